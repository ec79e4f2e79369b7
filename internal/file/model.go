package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/campus-resource-booking/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "file not found")
	ErrThumbnailMissing = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrTooLarge         = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrUnsupportedType  = apperror.New(http.StatusUnsupportedMediaType, "file type not allowed")
	ErrInvalidImage     = apperror.New(http.StatusBadRequest, "file is not a valid image")
)

// File represents a stored upload (resource photos).
type File struct {
	ID            string
	UserID        string
	Filename      string
	StoragePath   string  // Internal path
	ThumbnailPath *string // Internal path
	ContentType   string
	Size          int64
	CreatedAt     time.Time
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
