package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// MaxImageSize caps uploads at 5 MiB.
const MaxImageSize = 5 << 20

var (
	ErrNotAnImage = errors.New("only image files are allowed")
	ErrTooLarge   = fmt.Errorf("image exceeds the %d MB size limit", MaxImageSize>>20)
)

// Uploader stores image bytes in external object storage and returns a
// durable HTTPS URL. Delete is best-effort cleanup of superseded objects.
type Uploader interface {
	Upload(ctx context.Context, r io.Reader, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

// ValidateImage checks the declared MIME type and size of a multipart
// file before it is handed to the uploader.
func ValidateImage(header *multipart.FileHeader) error {
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}
	if header.Size > MaxImageSize {
		return ErrTooLarge
	}
	return nil
}
