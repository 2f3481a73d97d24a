package service

import (
	"context"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/storage"

	"go.uber.org/zap"
)

func notFound(entity string) error {
	return &domain.NotFoundError{Entity: entity}
}

func conflict(entity string) error {
	return &domain.ConflictError{Entity: entity}
}

// discardImages deletes stored images, logging failures.
func discardImages(ctx context.Context, images storage.ImageStore, logger *zap.Logger, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := images.Delete(context.WithoutCancel(ctx), url); err != nil {
			logger.Warn("Failed to delete image", zap.String("url", url), zap.Error(err))
		}
	}
}
