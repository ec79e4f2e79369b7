package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/campus-resource-booking/internal/auth"
	"github.com/nekogravitycat/campus-resource-booking/internal/file"
	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/response"
)

// FileUploadConfig configures HandleFileUpload for one endpoint.
type FileUploadConfig struct {
	FormFieldName string                                         // default "file"
	MaxSizeBytes  int64                                          // 0 = no limit
	AllowedTypes  []string                                       // empty = allow all
	ResizeImage   bool                                           // re-encode as JPEG within 1000x1000
	AfterUpload   func(ctx context.Context, fileID string) error // optional; the upload is rolled back if it fails
}

// ImageUploadConfig is the preset used for resource pictures.
func ImageUploadConfig(afterUpload func(ctx context.Context, fileID string) error) FileUploadConfig {
	return FileUploadConfig{
		FormFieldName: "image",
		MaxSizeBytes:  5 << 20,
		AllowedTypes:  []string{"image/jpeg", "image/png"},
		ResizeImage:   true,
		AfterUpload:   afterUpload,
	}
}

// HandleFileUpload stores the multipart file and runs the optional hook.
func (h *Handler) HandleFileUpload(c *gin.Context, config FileUploadConfig) {
	fieldName := config.FormFieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fileHeader, err := c.FormFile(fieldName)
	if err != nil {
		response.BadRequest(c, fieldName+" is required", nil)
		return
	}

	f, err := h.fileService.Upload(c.Request.Context(), file.UploadInput{
		FileHeader:   fileHeader,
		UserID:       auth.GetUserID(c),
		MaxSizeBytes: config.MaxSizeBytes,
		AllowedTypes: config.AllowedTypes,
		ResizeImage:  config.ResizeImage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if config.AfterUpload != nil {
		if err := config.AfterUpload(c.Request.Context(), f.ID); err != nil {
			if derr := h.fileService.Delete(c.Request.Context(), f.ID); derr != nil {
				zap.L().Warn("upload rollback failed", zap.String("file_id", f.ID), zap.Error(derr))
			}
			response.Error(c, err)
			return
		}
	}

	var thumbURL *string
	if f.ThumbnailPath != nil {
		t := file.ThumbnailURL(f.ID)
		thumbURL = &t
	}

	c.JSON(http.StatusCreated, FileUploadResponse{
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: thumbURL,
		ContentType:  f.ContentType,
		Size:         f.Size,
	})
}
