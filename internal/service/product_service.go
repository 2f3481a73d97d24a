package service

import (
	"context"
	"errors"
	"fmt"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/repository"
	"boutique-catalog/internal/storage"

	"go.uber.org/zap"
)

// ProductService defines the catalog operations on products.
type ProductService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
	ListByLookbook(ctx context.Context, lookbookID string) ([]*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput, image *storage.Upload) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch, image *storage.Upload) (*domain.Product, error)
	UpdateQuantity(ctx context.Context, id string, quantity *int) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
}

type productService struct {
	products   repository.ProductRepository
	categories repository.CollectionRepository
	lookbooks  repository.CollectionRepository
	images     storage.ImageStore
	logger     *zap.Logger
}

// NewProductService creates a new instance of ProductService
func NewProductService(
	products repository.ProductRepository,
	categories repository.CollectionRepository,
	lookbooks repository.CollectionRepository,
	images storage.ImageStore,
	logger *zap.Logger,
) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		lookbooks:  lookbooks,
		images:     images,
		logger:     logger,
	}
}

func (s *productService) List(ctx context.Context) ([]*domain.Product, error) {
	return s.products.List(ctx)
}

func (s *productService) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = domain.NormalizeID(id)
	if !domain.IsValidID(id) {
		return nil, notFound("Product")
	}

	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, notFound("Product")
	}
	return product, err
}

// ListByCategory returns the products of a category. Unknown or malformed
// ids yield an empty list.
func (s *productService) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	categoryID = domain.NormalizeID(categoryID)
	if !domain.IsValidID(categoryID) {
		return []*domain.Product{}, nil
	}
	return s.products.ListByCategory(ctx, categoryID)
}

func (s *productService) ListByLookbook(ctx context.Context, lookbookID string) ([]*domain.Product, error) {
	lookbookID = domain.NormalizeID(lookbookID)
	if !domain.IsValidID(lookbookID) {
		return []*domain.Product{}, nil
	}
	return s.products.ListByLookbook(ctx, lookbookID)
}

// resolveReference loads the collection a product points at, turning a
// missing record into the "Invalid <kind> ID" validation message.
func resolveReference(ctx context.Context, repo repository.CollectionRepository, kind domain.Kind, id string) (*domain.Collection, error) {
	collection, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrCollectionNotFound) {
		return nil, domain.NewValidationError("Invalid " + string(kind) + " ID")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", kind, err)
	}
	return collection, nil
}

// Create validates the input, checks both references, stores the image
// and inserts the product. The stored image is removed again if the
// insert fails.
func (s *productService) Create(ctx context.Context, in domain.ProductInput, image *storage.Upload) (*domain.Product, error) {
	in.Normalize()
	if err := domain.ValidateProductInput(in, image != nil); err != nil {
		return nil, err
	}

	category, err := resolveReference(ctx, s.categories, domain.KindCategory, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if _, err := resolveReference(ctx, s.lookbooks, domain.KindLookbook, in.LookbookID); err != nil {
		return nil, err
	}

	url, err := s.images.Save(ctx, "product", image)
	if err != nil {
		return nil, fmt.Errorf("failed to store product image: %w", err)
	}

	product := &domain.Product{
		ID:          domain.NewID(),
		Name:        in.Name,
		Description: in.Description,
		Price:       *in.Price,
		Quantity:    *in.Quantity,
		Size:        in.Size,
		IsAvailable: true,
		Images:      []string{url},
		CategoryID:  in.CategoryID,
		LookbookID:  in.LookbookID,
	}
	if in.IsAvailable != nil {
		product.IsAvailable = *in.IsAvailable
	}

	if err := s.products.Create(ctx, product); err != nil {
		discardImages(ctx, s.images, s.logger, url)
		return nil, err
	}
	product.Category = category

	s.logger.Info("Product created", zap.String("product_id", product.ID))
	return product, nil
}

// Update applies a partial patch. A new image replaces the stored images,
// which are deleted only after the record is saved.
func (s *productService) Update(ctx context.Context, id string, patch domain.ProductPatch, image *storage.Upload) (*domain.Product, error) {
	if err := domain.ValidateProductPatch(patch); err != nil {
		return nil, err
	}

	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Version != nil && *patch.Version != product.Version {
		return nil, conflict("Product")
	}
	if patch.IsEmpty() && image == nil {
		return product, nil
	}

	var category *domain.Collection
	if patch.CategoryID != nil {
		if category, err = resolveReference(ctx, s.categories, domain.KindCategory, domain.NormalizeID(*patch.CategoryID)); err != nil {
			return nil, err
		}
	}
	if patch.LookbookID != nil {
		if _, err := resolveReference(ctx, s.lookbooks, domain.KindLookbook, domain.NormalizeID(*patch.LookbookID)); err != nil {
			return nil, err
		}
	}

	patch.Apply(product)
	if category != nil {
		product.Category = category
	}

	var newURL string
	previous := product.Images
	if image != nil {
		if newURL, err = s.images.Save(ctx, "product", image); err != nil {
			return nil, fmt.Errorf("failed to store product image: %w", err)
		}
		product.Images = []string{newURL}
	}

	if err := s.products.Update(ctx, product); err != nil {
		discardImages(ctx, s.images, s.logger, newURL)
		switch {
		case errors.Is(err, repository.ErrVersionConflict):
			return nil, conflict("Product")
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, notFound("Product")
		}
		return nil, err
	}

	if image != nil {
		discardImages(ctx, s.images, s.logger, previous...)
	}

	s.logger.Info("Product updated", zap.String("product_id", product.ID), zap.Int("version", product.Version))
	return product, nil
}

// UpdateQuantity changes only the quantity of a product.
func (s *productService) UpdateQuantity(ctx context.Context, id string, quantity *int) (*domain.Product, error) {
	if quantity == nil {
		return nil, domain.NewValidationError("Quantity is required")
	}
	if err := domain.ValidateQuantity(*quantity); err != nil {
		return nil, err
	}

	id = domain.NormalizeID(id)
	if !domain.IsValidID(id) {
		return nil, notFound("Product")
	}

	product, err := s.products.UpdateQuantity(ctx, id, *quantity)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, notFound("Product")
	}
	return product, err
}

// Delete removes a product and, best-effort, its images.
func (s *productService) Delete(ctx context.Context, id string) (*domain.Product, error) {
	id = domain.NormalizeID(id)
	if !domain.IsValidID(id) {
		return nil, notFound("Product")
	}

	product, err := s.products.Delete(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return nil, notFound("Product")
	}
	if err != nil {
		return nil, err
	}

	discardImages(ctx, s.images, s.logger, product.Images...)

	s.logger.Info("Product deleted", zap.String("product_id", product.ID))
	return product, nil
}
