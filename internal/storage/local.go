package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps images in a directory and serves them under a URL
// prefix. Saved URLs are absolute when a public base URL is set.
type LocalStore struct {
	dir       string
	urlPrefix string
	publicURL string
}

// NewLocalStore creates the upload directory if needed. publicURL may be
// empty, in which case saved URLs are server-relative.
func NewLocalStore(dir, urlPrefix, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, prefix string, upload *Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := objectName(prefix, time.Now()) + upload.Extension
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	return s.publicURL + s.urlPrefix + "/" + name, nil
}

// Delete removes the file behind url. URLs saved before the public base
// URL was set are still recognised.
func (s *LocalStore) Delete(_ context.Context, url string) error {
	if s.publicURL != "" {
		url = strings.TrimPrefix(url, s.publicURL)
	}
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return nil
	}

	name := path.Base(url)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", name, err)
	}
	return nil
}

// URLPrefix returns the path the images are served under.
func (s *LocalStore) URLPrefix() string {
	return s.urlPrefix
}

// Handler serves the stored images; mount it at URLPrefix.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(s.urlPrefix, http.FileServer(http.Dir(s.dir)))
}
