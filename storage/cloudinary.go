package storage

import (
	"context"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"weblog/logger"
)

// CloudinaryUploader stores images in Cloudinary and serves them from its
// CDN. Configured from a single CLOUDINARY_URL credential string.
type CloudinaryUploader struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryUploader(cloudinaryURL string) (*CloudinaryUploader, error) {
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryUploader{cld: cld}, nil
}

func (u *CloudinaryUploader) Upload(ctx context.Context, r io.Reader, folder string) (string, error) {
	result, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         folder,
		PublicID:       uuid.NewString(),
		Transformation: "c_limit,w_1600,h_1600,q_auto",
	})
	if err != nil {
		return "", err
	}
	return result.SecureURL, nil
}

// Delete removes a previously uploaded object, identified by the stored
// delivery URL. Failures are logged by callers and never fail a request.
func (u *CloudinaryUploader) Delete(ctx context.Context, url string) error {
	publicID := publicIDFromURL(url)
	if publicID == "" {
		return nil
	}
	_, err := u.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		logger.S.Warnw("cloudinary destroy failed", "publicId", publicID, "error", err)
	}
	return err
}

// publicIDFromURL extracts the folder-qualified public ID from a
// Cloudinary delivery URL, e.g.
// https://res.cloudinary.com/demo/image/upload/v123/weblog/posts/abc.jpg
// -> weblog/posts/abc. Returns "" for URLs that are not Cloudinary's.
func publicIDFromURL(url string) string {
	_, rest, found := strings.Cut(url, "/upload/")
	if !found {
		return ""
	}
	// Drop the version segment when present.
	if strings.HasPrefix(rest, "v") {
		if first, remainder, ok := strings.Cut(rest, "/"); ok && isDigits(first[1:]) {
			rest = remainder
		}
	}
	if dot := strings.LastIndex(rest, "."); dot > 0 {
		rest = rest[:dot]
	}
	return rest
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
