package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore keeps images in a Cloudinary folder.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: strings.Trim(folder, "/")}, nil
}

func (s *CloudinaryStore) Save(ctx context.Context, prefix string, upload *Upload) (string, error) {
	unique := false
	overwrite := false
	result, err := s.cld.Upload.Upload(ctx, upload.Reader(), uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       objectName(prefix, time.Now()),
		ResourceType:   "image",
		UniqueFilename: &unique,
		Overwrite:      &overwrite,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("failed to upload image: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("upload successful but no URL returned")
	}

	return result.SecureURL, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, url string) error {
	publicID := publicIDFromURL(url)
	if publicID == "" || (s.folder != "" && !strings.HasPrefix(publicID, s.folder+"/")) {
		return nil
	}

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("failed to delete image %s: %w", publicID, err)
	}
	return nil
}

// publicIDFromURL extracts the public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1234/boutique/product-1.jpg
// which yields boutique/product-1.
func publicIDFromURL(url string) string {
	_, after, ok := strings.Cut(url, "/upload/")
	if !ok {
		return ""
	}

	if version, rest, found := strings.Cut(after, "/"); found && isVersionSegment(version) {
		after = rest
	}

	if dot := strings.LastIndex(after, "."); dot != -1 {
		after = after[:dot]
	}
	return after
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
