package recipe

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"chefs-fridge/internal/core/ai/service"
	"chefs-fridge/internal/core/export"
	"chefs-fridge/internal/core/image"
	recipeService "chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/infrastructure/config"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 頁面控制器
type Handler struct {
	config            *config.Config
	sessions          *session.Store
	imageService      *image.Service
	ingredientService *recipeService.IngredientService
	recipeService     *recipeService.RecipeService
	renderer          *export.Renderer
	ai                *service.Service
}

// NewHandler 創建新的頁面控制器
func NewHandler(
	cfg *config.Config,
	sessions *session.Store,
	imageService *image.Service,
	ingredientService *recipeService.IngredientService,
	recipeService *recipeService.RecipeService,
	renderer *export.Renderer,
	ai *service.Service,
) *Handler {
	return &Handler{
		config:            cfg,
		sessions:          sessions,
		imageService:      imageService,
		ingredientService: ingredientService,
		recipeService:     recipeService,
		renderer:          renderer,
		ai:                ai,
	}
}

// HandleGenerate 依目前食材與偏好生成一批食譜，取代現有草稿
func (h *Handler) HandleGenerate(c *gin.Context) {
	st := current(c)

	var req recipeService.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	diet, cuisine, count, err := req.Validate()
	if err != nil {
		h.fail(c, err)
		return
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("session_id", st.ID),
		zap.Int("ingredients", st.Ingredients.Len()),
		zap.Int("count", count),
	)

	drafts, notices, err := h.recipeService.Generate(c.Request.Context(), st.Ingredients.Items(), diet, cuisine, count)
	if err != nil {
		h.fail(c, err)
		return
	}

	st.Drafts = drafts
	if failed := len(notices); failed < len(drafts) {
		notices.Add(common.NoticeSuccess, "Generated %d recipe(s)", len(drafts)-failed)
	}

	h.respond(c, http.StatusOK, st, notices, gin.H{"recipes": draftViews(drafts)})
}

// HandleListRecipes 目前的草稿（每次重新解析）
func (h *Handler) HandleListRecipes(c *gin.Context) {
	st := current(c)
	c.JSON(http.StatusOK, gin.H{"recipes": draftViews(st.Drafts)})
}

// HandleRecipesPDF 下載目前所有草稿的 PDF
func (h *Handler) HandleRecipesPDF(c *gin.Context) {
	st := current(c)
	if len(st.Drafts) == 0 {
		h.fail(c, common.ErrNoRecipes)
		return
	}

	texts := make([]string, len(st.Drafts))
	for i, d := range st.Drafts {
		texts[i] = d.Text
	}
	h.writePDF(c, texts, c.Query("label"))
}

// HandleSaveRecipe 儲存第 index 份草稿
func (h *Handler) HandleSaveRecipe(c *gin.Context) {
	st := current(c)
	i, err := indexParam(c, "index")
	if err != nil {
		h.fail(c, err)
		return
	}

	saved, err := st.SaveDraft(i)
	if err != nil {
		h.fail(c, err)
		return
	}

	var notices common.Notices
	notices.Add(common.NoticeSuccess, "Recipe saved!")
	h.respond(c, http.StatusCreated, st, notices, gin.H{"saved_recipe": savedView(saved)})
}

// writePDF 產生並回傳 PDF 附件
func (h *Handler) writePDF(c *gin.Context, texts []string, label string) {
	doc, err := h.renderer.Render(texts, label)
	if err != nil {
		h.fail(c, err)
		return
	}

	common.LogInfo("PDF 已產生",
		zap.String("file", doc.FileName),
		zap.Int("pages", doc.Pages),
		zap.Int("sections", len(doc.Sections)),
	)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, "application/pdf", doc.Bytes)
}
