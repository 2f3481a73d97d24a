package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/repository"
	"boutique-catalog/internal/storage"

	"go.uber.org/zap"
)

// CollectionService defines the catalog operations on categories or
// lookbooks; one instance serves one Kind.
type CollectionService interface {
	Kind() domain.Kind
	List(ctx context.Context) ([]*domain.Collection, error)
	Get(ctx context.Context, id string) (*domain.Collection, error)
	Create(ctx context.Context, in domain.CollectionInput, image *storage.Upload) (*domain.Collection, error)
	Update(ctx context.Context, id string, patch domain.CollectionPatch, image *storage.Upload) (*domain.Collection, error)
	Delete(ctx context.Context, id string) (*domain.Collection, error)
}

type collectionService struct {
	kind        domain.Kind
	collections repository.CollectionRepository
	images      storage.ImageStore
	logger      *zap.Logger
}

// NewCollectionService creates a CollectionService for kind
func NewCollectionService(
	kind domain.Kind,
	collections repository.CollectionRepository,
	images storage.ImageStore,
	logger *zap.Logger,
) CollectionService {
	return &collectionService{
		kind:        kind,
		collections: collections,
		images:      images,
		logger:      logger.With(zap.String("kind", string(kind))),
	}
}

func (s *collectionService) Kind() domain.Kind {
	return s.kind
}

func (s *collectionService) label() string {
	return s.kind.Label()
}

func (s *collectionService) List(ctx context.Context) ([]*domain.Collection, error) {
	return s.collections.List(ctx)
}

func (s *collectionService) Get(ctx context.Context, id string) (*domain.Collection, error) {
	id = domain.NormalizeID(id)
	if !domain.IsValidID(id) {
		return nil, notFound(s.label())
	}

	collection, err := s.collections.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCollectionNotFound) {
		return nil, notFound(s.label())
	}
	return collection, err
}

func (s *collectionService) duplicateName() error {
	return domain.NewValidationError(s.label() + " with this name already exists")
}

func (s *collectionService) takenName() error {
	return domain.NewValidationError("Another " + string(s.kind) + " with this name exists")
}

// Create inserts a collection after checking that its name is free. The
// unique index catches names taken concurrently.
func (s *collectionService) Create(ctx context.Context, in domain.CollectionInput, image *storage.Upload) (*domain.Collection, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := domain.ValidateCollectionInput(s.kind, in, image != nil); err != nil {
		return nil, err
	}

	_, err := s.collections.FindByName(ctx, in.Name)
	if err == nil {
		return nil, s.duplicateName()
	}
	if !errors.Is(err, repository.ErrCollectionNotFound) {
		return nil, fmt.Errorf("failed to check %s name: %w", s.kind, err)
	}

	url, err := s.images.Save(ctx, string(s.kind), image)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s image: %w", s.kind, err)
	}

	collection := &domain.Collection{
		ID:          domain.NewID(),
		Name:        in.Name,
		Image:       url,
		Description: in.Description,
	}

	if err := s.collections.Create(ctx, collection); err != nil {
		discardImages(ctx, s.images, s.logger, url)
		if errors.Is(err, repository.ErrCollectionAlreadyExists) {
			return nil, s.duplicateName()
		}
		return nil, err
	}

	s.logger.Info("Collection created", zap.String("id", collection.ID))
	return collection, nil
}

func (s *collectionService) Update(ctx context.Context, id string, patch domain.CollectionPatch, image *storage.Upload) (*domain.Collection, error) {
	if err := domain.ValidateCollectionPatch(s.kind, patch); err != nil {
		return nil, err
	}

	collection, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Version != nil && *patch.Version != collection.Version {
		return nil, conflict(s.label())
	}
	if patch.IsEmpty() && image == nil {
		return collection, nil
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		other, err := s.collections.FindByName(ctx, name)
		switch {
		case err == nil && other.ID != collection.ID:
			return nil, s.takenName()
		case err != nil && !errors.Is(err, repository.ErrCollectionNotFound):
			return nil, fmt.Errorf("failed to check %s name: %w", s.kind, err)
		}
	}

	patch.Apply(collection)

	var newURL string
	previous := collection.Image
	if image != nil {
		if newURL, err = s.images.Save(ctx, string(s.kind), image); err != nil {
			return nil, fmt.Errorf("failed to store %s image: %w", s.kind, err)
		}
		collection.Image = newURL
	}

	if err := s.collections.Update(ctx, collection); err != nil {
		discardImages(ctx, s.images, s.logger, newURL)
		switch {
		case errors.Is(err, repository.ErrCollectionAlreadyExists):
			return nil, s.takenName()
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, conflict(s.label())
		case errors.Is(err, repository.ErrCollectionNotFound):
			return nil, notFound(s.label())
		}
		return nil, err
	}

	if image != nil {
		discardImages(ctx, s.images, s.logger, previous)
	}

	s.logger.Info("Collection updated", zap.String("id", collection.ID), zap.Int("version", collection.Version))
	return collection, nil
}

// Delete removes a collection. Products referencing it are kept and read
// back with a null category.
func (s *collectionService) Delete(ctx context.Context, id string) (*domain.Collection, error) {
	id = domain.NormalizeID(id)
	if !domain.IsValidID(id) {
		return nil, notFound(s.label())
	}

	collection, err := s.collections.Delete(ctx, id)
	if errors.Is(err, repository.ErrCollectionNotFound) {
		return nil, notFound(s.label())
	}
	if err != nil {
		return nil, err
	}

	discardImages(ctx, s.images, s.logger, collection.Image)

	s.logger.Info("Collection deleted", zap.String("id", collection.ID))
	return collection, nil
}
