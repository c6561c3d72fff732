package recipe

import (
	"errors"
	"net/http"

	recipeService "chefs-fridge/internal/core/recipe"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandleIdentify 對目前所有圖片執行食材識別，結果合併到食材清單
func (h *Handler) HandleIdentify(c *gin.Context) {
	st := current(c)

	common.LogInfo("開始處理食材識別請求",
		zap.String("request_id", requestid.Get(c)),
		zap.String("session_id", st.ID),
		zap.Int("images", len(st.Images)),
	)

	res, err := h.ingredientService.Identify(c.Request.Context(), st.ID, st.Images)
	if err != nil {
		// 前置條件不符直接回錯誤；模型呼叫失敗則以訊息回報並回傳空結果
		if errors.Is(err, common.ErrNoImages) || errors.Is(err, common.ErrModelUnavailable) {
			h.fail(c, err)
			return
		}
		var notices common.Notices
		notices.Add(common.NoticeError, "Error identifying items: %v", err)
		h.respond(c, http.StatusOK, st, notices, gin.H{"identified": []string{}})
		return
	}

	if !res.Cached {
		st.RememberCacheKey(res.CacheKey)
	}
	added := st.Ingredients.Add(res.Items...)

	var notices common.Notices
	switch {
	case len(res.Items) == 0:
		notices.Add(common.NoticeWarning, "No food items identified")
	case added == 0:
		notices.Add(common.NoticeInfo, "Identified %d item(s), all already in the list", len(res.Items))
	default:
		notices.Add(common.NoticeSuccess, "Identified %d item(s), %d new", len(res.Items), added)
	}
	h.respond(c, http.StatusOK, st, notices, gin.H{"identified": res.Items, "cached": res.Cached})
}

// AddIngredientsRequest 手動新增食材，逗號分隔
type AddIngredientsRequest struct {
	Text string `json:"text"`
}

// HandleAddIngredients 手動新增食材
func (h *Handler) HandleAddIngredients(c *gin.Context) {
	st := current(c)

	var req AddIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	items := recipeService.ParseItemList(req.Text)
	added := st.Ingredients.Add(items...)

	var notices common.Notices
	if added > 0 {
		notices.Add(common.NoticeSuccess, "Added %d ingredient(s)", added)
	} else if len(items) > 0 {
		notices.Add(common.NoticeInfo, "Ingredients already in the list")
	}
	h.respond(c, http.StatusOK, st, notices, nil)
}

// EditIngredientRequest 修改食材
type EditIngredientRequest struct {
	Value string `json:"value"`
}

// HandleEditIngredient 以新值取代第 index 項
func (h *Handler) HandleEditIngredient(c *gin.Context) {
	st := current(c)
	i, err := indexParam(c, "index")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req EditIngredientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if err := st.Ingredients.Replace(i, req.Value); err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, st, nil, nil)
}

// EditModeRequest 切換編輯模式
type EditModeRequest struct {
	Enabled bool `json:"enabled"`
}

// HandleEditMode 切換第 index 項的編輯模式
func (h *Handler) HandleEditMode(c *gin.Context) {
	st := current(c)
	i, err := indexParam(c, "index")
	if err != nil {
		h.fail(c, err)
		return
	}

	var req EditModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	if err := st.Ingredients.SetEditing(i, req.Enabled); err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, st, nil, nil)
}

// HandleDeleteIngredient 刪除第 index 項
func (h *Handler) HandleDeleteIngredient(c *gin.Context) {
	st := current(c)
	i, err := indexParam(c, "index")
	if err != nil {
		h.fail(c, err)
		return
	}
	removed, err := st.Ingredients.Remove(i)
	if err != nil {
		h.fail(c, err)
		return
	}

	var notices common.Notices
	notices.Add(common.NoticeInfo, "Removed %s", removed)
	h.respond(c, http.StatusOK, st, notices, nil)
}
