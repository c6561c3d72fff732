package recipe

import (
	"net/http"

	"chefs-fridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// HandleListSaved 已儲存食譜列表
func (h *Handler) HandleListSaved(c *gin.Context) {
	st := current(c)
	saved := make([]SavedSummary, 0, len(st.Saved))
	for _, r := range st.Saved {
		saved = append(saved, savedSummary(r))
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// HandleViewSaved 檢視已儲存食譜並切換到 View Recipe
func (h *Handler) HandleViewSaved(c *gin.Context) {
	st := current(c)
	r, err := st.View(c.Param("rid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK, st, nil, gin.H{"recipe": savedView(r)})
}

// HandleDeleteSaved 刪除已儲存食譜
func (h *Handler) HandleDeleteSaved(c *gin.Context) {
	st := current(c)
	if err := st.DeleteSaved(c.Param("rid")); err != nil {
		h.fail(c, err)
		return
	}

	var notices common.Notices
	notices.Add(common.NoticeSuccess, "Recipe deleted")
	h.respond(c, http.StatusOK, st, notices, nil)
}

// HandleSavedPDF 單一已儲存食譜的 PDF，以標題命名
func (h *Handler) HandleSavedPDF(c *gin.Context) {
	st := current(c)
	r, err := st.FindSaved(c.Param("rid"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.writePDF(c, []string{r.Content}, r.Title)
}
