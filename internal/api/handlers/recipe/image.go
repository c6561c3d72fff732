package recipe

import (
	"net/http"

	"chefs-fridge/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ImageField 上傳表單欄位名稱
const ImageField = "images"

// HandleUploadImages 上傳圖片：逐張重新編碼，重複或無法解碼的圖片以訊息回報並略過
func (h *Handler) HandleUploadImages(c *gin.Context) {
	st := current(c)

	form, err := c.MultipartForm()
	if err != nil {
		h.fail(c, common.ErrInvalidRequest.WithMessage("multipart form with image files is required").Wrap(err))
		return
	}
	files := form.File[ImageField]
	if len(files) == 0 {
		h.fail(c, common.ErrInvalidRequest.WithMessage("no files in field \""+ImageField+"\""))
		return
	}

	var notices common.Notices
	added := 0
	for _, fh := range files {
		if limit := h.config.Session.MaxImages; limit > 0 && len(st.Images) >= limit {
			notices.Add(common.NoticeWarning, "Image limit of %d reached, %s skipped", limit, fh.Filename)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			notices.Add(common.NoticeError, "Could not read %s", fh.Filename)
			continue
		}
		img, err := h.imageService.Process(fh.Filename, f)
		f.Close()
		if err != nil {
			common.LogWarn("圖片處理失敗",
				zap.String("request_id", requestid.Get(c)),
				zap.String("name", fh.Filename),
				zap.Error(err),
			)
			notices.Add(common.NoticeError, "%s: %s", fh.Filename, common.AsCustomError(err).Message)
			continue
		}

		if !st.AddImage(img) {
			notices.Add(common.NoticeWarning, "Duplicate image detected: %s", fh.Filename)
			continue
		}
		added++
	}

	if added > 0 {
		notices.Add(common.NoticeSuccess, "%d image(s) uploaded successfully", added)
	}

	common.LogInfo("圖片上傳完成",
		zap.String("session_id", st.ID),
		zap.Int("files", len(files)),
		zap.Int("added", added),
		zap.Int("total", len(st.Images)),
	)
	h.respond(c, http.StatusOK, st, notices, gin.H{"added": added})
}

// HandleDeleteImage 刪除第 index 張圖片
func (h *Handler) HandleDeleteImage(c *gin.Context) {
	st := current(c)
	i, err := indexParam(c, "index")
	if err != nil {
		h.fail(c, err)
		return
	}
	removed, err := st.RemoveImage(i)
	if err != nil {
		h.fail(c, err)
		return
	}

	var notices common.Notices
	notices.Add(common.NoticeInfo, "Removed %s", removed.Name)
	h.respond(c, http.StatusOK, st, notices, nil)
}
