package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boutique-catalog/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrCollectionNotFound      = errors.New("collection not found")
	ErrCollectionAlreadyExists = errors.New("collection with this name already exists")
	ErrVersionConflict         = errors.New("record was modified concurrently")
)

const uniqueViolation = "23505"

// CollectionRepository defines data access for categories and lookbooks,
// which share one table shape.
type CollectionRepository interface {
	Create(ctx context.Context, collection *domain.Collection) error
	// Update writes collection if its Version still matches the stored
	// one, then advances Version.
	Update(ctx context.Context, collection *domain.Collection) error
	Delete(ctx context.Context, id string) (*domain.Collection, error)
	FindByID(ctx context.Context, id string) (*domain.Collection, error)
	FindByName(ctx context.Context, name string) (*domain.Collection, error)
	List(ctx context.Context) ([]*domain.Collection, error)
}

type collectionRepository struct {
	db    *sql.DB
	table string
}

// NewCategoryRepository creates a CollectionRepository over the categories table
func NewCategoryRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db, table: "categories"}
}

// NewLookbookRepository creates a CollectionRepository over the lookbooks table
func NewLookbookRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db, table: "lookbooks"}
}

const collectionColumns = "id, name, image, description, version, created_at, updated_at"

func scanCollection(row interface{ Scan(...any) error }) (*domain.Collection, error) {
	c := &domain.Collection{}
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Image,
		&c.Description,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Create inserts a new collection; Version, CreatedAt and UpdatedAt are
// filled from the database.
func (r *collectionRepository) Create(ctx context.Context, c *domain.Collection) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, image, description, version)
		VALUES ($1, $2, $3, $4, 1)
		RETURNING version, created_at, updated_at
	`, r.table)

	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Image, c.Description).
		Scan(&c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrCollectionAlreadyExists
		}
		return fmt.Errorf("failed to create %s record: %w", r.table, err)
	}

	return nil
}

func (r *collectionRepository) Update(ctx context.Context, c *domain.Collection) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, image = $3, description = $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $5
		RETURNING version, updated_at
	`, r.table)

	err := r.db.QueryRowContext(ctx, query, c.ID, c.Name, c.Image, c.Description, c.Version).
		Scan(&c.Version, &c.UpdatedAt)
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return ErrCollectionAlreadyExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update %s record: %w", r.table, err)
	}

	// No row matched: either the record is gone or its version moved on.
	if _, err := r.FindByID(ctx, c.ID); err != nil {
		return err
	}
	return ErrVersionConflict
}

// Delete removes a collection and returns the deleted row. Products that
// reference it are left untouched.
func (r *collectionRepository) Delete(ctx context.Context, id string) (*domain.Collection, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, r.table, collectionColumns)

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to delete %s record: %w", r.table, err)
	}

	return c, nil
}

func (r *collectionRepository) FindByID(ctx context.Context, id string) (*domain.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, collectionColumns, r.table)

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to find %s record by ID: %w", r.table, err)
	}

	return c, nil
}

// FindByName looks a collection up by exact, case-sensitive name.
func (r *collectionRepository) FindByName(ctx context.Context, name string) (*domain.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1`, collectionColumns, r.table)

	c, err := scanCollection(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, fmt.Errorf("failed to find %s record by name: %w", r.table, err)
	}

	return c, nil
}

// List retrieves all collections, newest first
func (r *collectionRepository) List(ctx context.Context) ([]*domain.Collection, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC, id DESC`, collectionColumns, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	defer rows.Close()

	collections := []*domain.Collection{}
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", r.table, err)
		}
		collections = append(collections, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.table, err)
	}

	return collections, nil
}
