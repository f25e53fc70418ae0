package storage

import (
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fileHeader(contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "upload.bin",
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
		Size:     size,
	}
}

func TestValidateImageAcceptsImages(t *testing.T) {
	for _, ct := range []string{"image/jpeg", "image/png", "image/gif", "image/webp"} {
		assert.NoError(t, ValidateImage(fileHeader(ct, 1024)), ct)
	}
}

func TestValidateImageRejectsNonImages(t *testing.T) {
	for _, ct := range []string{"application/pdf", "text/html", "video/mp4", ""} {
		assert.ErrorIs(t, ValidateImage(fileHeader(ct, 1024)), ErrNotAnImage, ct)
	}
}

func TestValidateImageRejectsOversize(t *testing.T) {
	assert.ErrorIs(t, ValidateImage(fileHeader("image/png", MaxImageSize+1)), ErrTooLarge)
	assert.NoError(t, ValidateImage(fileHeader("image/png", MaxImageSize)))
}

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://res.cloudinary.com/demo/image/upload/v1712345678/weblog/posts/abc123.jpg", "weblog/posts/abc123"},
		{"https://res.cloudinary.com/demo/image/upload/weblog/profiles/def456.png", "weblog/profiles/def456"},
		{"https://example.com/some/other/image.jpg", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, publicIDFromURL(tt.url), tt.url)
	}
}
