package middleware

import (
	"strings"

	"chefs-fridge/internal/core/session"
	"chefs-fridge/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// SessionKey gin context 中的會話鍵
const SessionKey = "session"

// Session 載入 :id 對應的會話，並在整個請求期間持有該會話的鎖
func Session(store *session.Store, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := store.Get(c.Param("id"))
		if err != nil {
			common.WriteError(c, err, debug)
			return
		}

		st.Lock()
		defer st.Unlock()
		if st.Ended() {
			common.WriteError(c, common.ErrSessionNotFound, debug)
			return
		}
		st.Touch()

		c.Set(SessionKey, st)
		c.Next()
	}
}

// CurrentSession 取得 Session 中間件載入的會話
func CurrentSession(c *gin.Context) *session.State {
	return c.MustGet(SessionKey).(*session.State)
}

// SessionImagesKey 以目前圖片雜湊作為去重鍵，圖片變更後視為新請求
func SessionImagesKey(c *gin.Context) string {
	return strings.Join(CurrentSession(c).ImageHashes(), ",")
}

// SessionIngredientsKey 以目前食材清單作為去重鍵
func SessionIngredientsKey(c *gin.Context) string {
	return strings.Join(CurrentSession(c).Ingredients.Items(), "\n")
}
