package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boutique-catalog/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access.
// Reads populate Product.Category from the categories table; it stays nil
// when the referenced category no longer exists.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	// Update writes product if its Version still matches the stored one,
	// then advances Version.
	Update(ctx context.Context, product *domain.Product) error
	UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error)
	ListByLookbook(ctx context.Context, lookbookID string) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, quantity, size, is_available, images,
	category_id, lookbook_id, version, created_at, updated_at`

const selectProducts = `
	SELECT p.id, p.name, p.description, p.price, p.quantity, p.size, p.is_available, p.images,
	       p.category_id, p.lookbook_id, p.version, p.created_at, p.updated_at,
	       c.id, c.name, c.image, c.description, c.version, c.created_at, c.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func productFields(p *domain.Product, types *pgtype.Map) []any {
	return []any{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Quantity,
		&p.Size,
		&p.IsAvailable,
		types.SQLScanner(&p.Images),
		&p.CategoryID,
		&p.LookbookID,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func scanProduct(row rowScanner, types *pgtype.Map) (*domain.Product, error) {
	p := &domain.Product{}
	if err := row.Scan(productFields(p, types)...); err != nil {
		return nil, err
	}
	return p, nil
}

// scanProductWithCategory scans a row of selectProducts.
func scanProductWithCategory(row rowScanner, types *pgtype.Map) (*domain.Product, error) {
	p := &domain.Product{}
	var (
		catID, catName, catImage, catDescription sql.NullString
		catVersion                               sql.NullInt64
		catCreatedAt, catUpdatedAt               sql.NullTime
	)

	dest := append(productFields(p, types),
		&catID, &catName, &catImage, &catDescription, &catVersion, &catCreatedAt, &catUpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if catID.Valid {
		p.Category = &domain.Collection{
			ID:          catID.String,
			Name:        catName.String,
			Image:       catImage.String,
			Description: catDescription.String,
			Version:     int(catVersion.Int64),
			CreatedAt:   catCreatedAt.Time,
			UpdatedAt:   catUpdatedAt.Time,
		}
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	return p, nil
}

// Create inserts a new product; Version, CreatedAt and UpdatedAt are
// filled from the database.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, quantity, size, is_available, images,
		                      category_id, lookbook_id, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		RETURNING version, created_at, updated_at
	`

	images := product.Images
	if images == nil {
		images = []string{}
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Quantity,
		product.Size,
		product.IsAvailable,
		images,
		product.CategoryID,
		product.LookbookID,
	).Scan(&product.Version, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, size = $6,
		    is_available = $7, images = $8, category_id = $9, lookbook_id = $10,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $11
		RETURNING version, updated_at
	`

	images := product.Images
	if images == nil {
		images = []string{}
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Quantity,
		product.Size,
		product.IsAvailable,
		images,
		product.CategoryID,
		product.LookbookID,
		product.Version,
	).Scan(&product.Version, &product.UpdatedAt)

	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if _, err := r.FindByID(ctx, product.ID); err != nil {
		return err
	}
	return ErrVersionConflict
}

// UpdateQuantity sets only the quantity of a product.
func (r *productRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.Product, error) {
	query := `
		UPDATE products
		SET quantity = $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id, quantity), pgtype.NewMap())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product quantity: %w", err)
	}

	return product, nil
}

// Delete removes a product and returns the deleted row.
func (r *productRepository) Delete(ctx context.Context, id string) (*domain.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id), pgtype.NewMap())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	return product, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := selectProducts + ` WHERE p.id = $1`

	product, err := scanProductWithCategory(r.db.QueryRowContext(ctx, query, id), pgtype.NewMap())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves all products, newest first
func (r *productRepository) List(ctx context.Context) ([]*domain.Product, error) {
	return r.list(ctx, "")
}

// ListByCategory retrieves the products referencing categoryID. An unknown
// id yields an empty list.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID string) ([]*domain.Product, error) {
	return r.list(ctx, "WHERE p.category_id = $1", categoryID)
}

// ListByLookbook retrieves the products referencing lookbookID.
func (r *productRepository) ListByLookbook(ctx context.Context, lookbookID string) ([]*domain.Product, error) {
	return r.list(ctx, "WHERE p.lookbook_id = $1", lookbookID)
}

func (r *productRepository) list(ctx context.Context, where string, args ...any) ([]*domain.Product, error) {
	query := selectProducts + where + ` ORDER BY p.created_at DESC, p.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	types := pgtype.NewMap()
	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProductWithCategory(rows, types)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}
