package recipe

import (
	"net/http"

	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// HandleOptions 飲食、料理風格、數量與畫面選項
func (h *Handler) HandleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, Options())
}

// HandleCreateSession 建立新會話
func (h *Handler) HandleCreateSession(c *gin.Context) {
	st := h.sessions.Create()

	st.Lock()
	defer st.Unlock()

	var notices common.Notices
	if err := h.config.ConfigError(); err != nil {
		notices.Add(common.NoticeError, "%s", err.Error())
	}
	h.respond(c, http.StatusCreated, st, notices, nil)
}

// HandleGetSession 目前畫面狀態
func (h *Handler) HandleGetSession(c *gin.Context) {
	h.respond(c, http.StatusOK, current(c), nil, nil)
}

// HandleDeleteSession 結束會話並清除其快取
func (h *Handler) HandleDeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NavigateRequest 切換畫面
type NavigateRequest struct {
	Page string `json:"page" binding:"required"`
}

// HandleNavigate 切換畫面；沒有正在檢視的食譜時 View Recipe 會回到 Home
func (h *Handler) HandleNavigate(c *gin.Context) {
	st := current(c)

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}
	page, err := session.ParsePage(req.Page)
	if err != nil {
		h.fail(c, err)
		return
	}

	var notices common.Notices
	if got := st.Navigate(page); got != page {
		notices.Add(common.NoticeInfo, "No recipe selected")
	}
	h.respond(c, http.StatusOK, st, notices, nil)
}
