// Package storage persists uploaded catalog images and resolves them back
// to public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotImage = errors.New("only image files are allowed")
	ErrTooLarge = errors.New("file too large")
)

// ImageStore saves images and deletes them by the URL Save returned.
type ImageStore interface {
	// Save stores the upload under a fresh name starting with prefix and
	// returns its public URL.
	Save(ctx context.Context, prefix string, upload *Upload) (string, error)
	// Delete removes a previously saved image. URLs the store does not
	// own are ignored.
	Delete(ctx context.Context, url string) error
}

// Upload is an image held in memory, with its content type sniffed from
// the bytes rather than taken from the client.
type Upload struct {
	Filename    string
	ContentType string
	Extension   string
	Data        []byte
}

// Size returns the upload size in bytes.
func (u *Upload) Size() int64 {
	return int64(len(u.Data))
}

// Reader returns a fresh reader over the upload bytes.
func (u *Upload) Reader() io.Reader {
	return bytes.NewReader(u.Data)
}

// NewUpload reads at most maxBytes from r and checks that the content is
// an image.
func NewUpload(filename string, r io.Reader, maxBytes int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	// Only raster images pass; SVG is rejected.
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") || mtype.Is("image/svg+xml") {
		return nil, ErrNotImage
	}

	return &Upload{
		Filename:    filename,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
		Data:        data,
	}, nil
}

// objectName builds "<prefix>-<unix millis>-<random>".
func objectName(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d", prefix, now.UnixMilli(), rand.IntN(1e9))
}
