package repository

import (
	"context"
	"errors"
	"testing"

	"boutique-catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionRepository_CRUD(t *testing.T) {
	ctx := context.Background()

	for name, repo := range map[string]CollectionRepository{
		"categories": NewCategoryRepository(testDB),
		"lookbooks":  NewLookbookRepository(testDB),
	} {
		t.Run(name, func(t *testing.T) {
			c := &domain.Collection{
				ID:          domain.NewID(),
				Name:        "Summer " + domain.NewID(),
				Image:       "/uploads/summer.jpg",
				Description: "Light fabrics",
			}
			require.NoError(t, repo.Create(ctx, c))
			assert.Equal(t, 1, c.Version)

			found, err := repo.FindByID(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, c.Name, found.Name)
			assert.Equal(t, "Light fabrics", found.Description)

			byName, err := repo.FindByName(ctx, c.Name)
			require.NoError(t, err)
			assert.Equal(t, c.ID, byName.ID)

			c.Description = "Linen and cotton"
			require.NoError(t, repo.Update(ctx, c))
			assert.Equal(t, 2, c.Version)

			all, err := repo.List(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, all)

			deleted, err := repo.Delete(ctx, c.ID)
			require.NoError(t, err)
			assert.Equal(t, "Linen and cotton", deleted.Description)

			_, err = repo.FindByID(ctx, c.ID)
			assert.True(t, errors.Is(err, ErrCollectionNotFound))
		})
	}
}

func TestCollectionRepository_UniqueName(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(testDB)

	name := "Kaftans " + domain.NewID()
	first := &domain.Collection{ID: domain.NewID(), Name: name, Image: "/uploads/a.jpg"}
	require.NoError(t, repo.Create(ctx, first))
	defer repo.Delete(ctx, first.ID)

	second := &domain.Collection{ID: domain.NewID(), Name: name, Image: "/uploads/b.jpg"}
	assert.True(t, errors.Is(repo.Create(ctx, second), ErrCollectionAlreadyExists))

	// Names are case-sensitive.
	third := &domain.Collection{ID: domain.NewID(), Name: "k" + name[1:], Image: "/uploads/c.jpg"}
	require.NoError(t, repo.Create(ctx, third))
	defer repo.Delete(ctx, third.ID)

	third.Name = name
	assert.True(t, errors.Is(repo.Update(ctx, third), ErrCollectionAlreadyExists))
}

func TestCollectionRepository_UpdateGuardsVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewLookbookRepository(testDB)

	c := &domain.Collection{ID: domain.NewID(), Name: "Resort " + domain.NewID(), Image: "/uploads/r.jpg"}
	require.NoError(t, repo.Create(ctx, c))
	defer repo.Delete(ctx, c.ID)

	stale := *c
	c.Description = "first"
	require.NoError(t, repo.Update(ctx, c))

	stale.Description = "second"
	assert.True(t, errors.Is(repo.Update(ctx, &stale), ErrVersionConflict))

	missing := &domain.Collection{ID: domain.NewID(), Name: "Gone", Image: "/uploads/g.jpg", Version: 1}
	assert.True(t, errors.Is(repo.Update(ctx, missing), ErrCollectionNotFound))
}
