package http

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/campus-resource-booking/internal/file"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/request"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{fileService: fileService}
}

// ServeFile streams the stored blob.
func (h *Handler) ServeFile(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid file id", request.FieldErrors(err))
		return
	}

	stream, info, err := h.fileService.Download(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	writeStream(c, stream, info.ContentType, info.Filename, info.Size)
}

// ServeThumbnail streams the JPEG thumbnail generated at upload time.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid file id", request.FieldErrors(err))
		return
	}

	stream, info, err := h.fileService.DownloadThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	writeStream(c, stream, "image/jpeg", info.Filename+"_thumb.jpg", 0)
}

func writeStream(c *gin.Context, stream io.Reader, contentType, filename string, size int64) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("Cache-Control", "private, max-age=86400")
	if size > 0 {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
	}

	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		// Headers are already out.
		zap.L().Warn("file stream interrupted", zap.String("filename", filename), zap.Error(err))
	}
}
