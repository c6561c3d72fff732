package recipe

import (
	"fmt"
	"strconv"

	"chefs-fridge/internal/api/middleware"
	"chefs-fridge/internal/core/image"
	recipeService "chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// SessionView 會話的完整畫面狀態
type SessionView struct {
	ID             string           `json:"id"`
	Page           session.Page     `json:"page"`
	Step           int              `json:"step"`
	TotalSteps     int              `json:"total_steps"`
	Images         []*image.Image   `json:"images"`
	Ingredients    []IngredientView `json:"ingredients"`
	Recipes        []DraftView      `json:"recipes"`
	Saved          []SavedSummary   `json:"saved"`
	Viewing        *SavedView       `json:"viewing,omitempty"`
	ModelAvailable bool             `json:"model_available"`
	ConfigError    string           `json:"config_error,omitempty"`
	Provider       string           `json:"provider"`
	Model          string           `json:"model"`
}

// IngredientView 食材與其編輯狀態
type IngredientView struct {
	Index   int    `json:"index"`
	Value   string `json:"value"`
	Editing bool   `json:"editing"`
}

// DraftView 解析後的草稿
type DraftView struct {
	Index   int                        `json:"index"`
	Failed  bool                       `json:"failed"`
	Diet    common.Diet                `json:"diet"`
	Cuisine common.Cuisine             `json:"cuisine"`
	Recipe  recipeService.ParsedRecipe `json:"recipe"`
}

// SavedSummary 已儲存食譜列表項目
type SavedSummary struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Diet    common.Diet    `json:"diet"`
	Cuisine common.Cuisine `json:"cuisine"`
	SavedAt string         `json:"saved_at"`
}

// SavedView 已儲存食譜的完整內容
type SavedView struct {
	recipeService.SavedRecipe
	Recipe recipeService.ParsedRecipe `json:"recipe"`
}

// OptionsView 可選項目
type OptionsView struct {
	Diets        []common.Diet    `json:"diets"`
	Cuisines     []common.Cuisine `json:"cuisines"`
	RecipeCounts []int            `json:"recipe_counts"`
	Pages        []session.Page   `json:"pages"`
}

// Options 畫面使用的所有選項
func Options() OptionsView {
	return OptionsView{
		Diets:        common.Diets,
		Cuisines:     common.Cuisines,
		RecipeCounts: common.RecipeCounts,
		Pages:        session.Pages,
	}
}

func draftViews(drafts []recipeService.Draft) []DraftView {
	views := make([]DraftView, len(drafts))
	for i, d := range drafts {
		views[i] = DraftView{
			Index:   i,
			Failed:  d.Failed,
			Diet:    d.Diet,
			Cuisine: d.Cuisine,
			Recipe:  recipeService.Parse(d.Text, i+1),
		}
	}
	return views
}

func savedSummary(r recipeService.SavedRecipe) SavedSummary {
	return SavedSummary{
		ID:      r.ID,
		Title:   r.Title,
		Diet:    r.Diet,
		Cuisine: r.Cuisine,
		SavedAt: r.SavedAt.Format("2006-01-02 15:04"),
	}
}

func savedView(r recipeService.SavedRecipe) *SavedView {
	return &SavedView{SavedRecipe: r, Recipe: recipeService.Parse(r.Content, 1)}
}

// view 組合會話畫面狀態，呼叫者需持有會話鎖
func (h *Handler) view(st *session.State) SessionView {
	v := SessionView{
		ID:             st.ID,
		Page:           st.Page,
		Step:           st.Page.Step(),
		TotalSteps:     session.TotalSteps,
		Images:         st.Images,
		Ingredients:    make([]IngredientView, 0, st.Ingredients.Len()),
		Recipes:        draftViews(st.Drafts),
		Saved:          make([]SavedSummary, 0, len(st.Saved)),
		ModelAvailable: h.ai.Available() == nil,
		Provider:       h.ai.ProviderName(),
		Model:          h.ai.Model(),
	}
	if err := h.config.ConfigError(); err != nil {
		v.ConfigError = err.Error()
	}
	for i, item := range st.Ingredients.Items() {
		v.Ingredients = append(v.Ingredients, IngredientView{Index: i, Value: item, Editing: st.Ingredients.Editing(i)})
	}
	for _, r := range st.Saved {
		v.Saved = append(v.Saved, savedSummary(r))
	}
	if r := st.ViewingRecipe(); r != nil {
		v.Viewing = savedView(*r)
	}
	return v
}

// respond 回傳會話狀態與暫時訊息，extra 為各操作額外的欄位
func (h *Handler) respond(c *gin.Context, status int, st *session.State, notices common.Notices, extra gin.H) {
	if notices == nil {
		notices = common.Notices{}
	}
	body := gin.H{
		"session":  h.view(st),
		"messages": notices,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail 寫入錯誤響應
func (h *Handler) fail(c *gin.Context, err error) {
	common.WriteError(c, err, h.config.App.Debug)
}

// indexParam 解析路徑中的索引
func indexParam(c *gin.Context, name string) (int, error) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < 0 {
		return 0, common.ErrInvalidRequest.WithMessage(fmt.Sprintf("invalid %s %q", name, c.Param(name)))
	}
	return i, nil
}

func current(c *gin.Context) *session.State {
	return middleware.CurrentSession(c)
}
