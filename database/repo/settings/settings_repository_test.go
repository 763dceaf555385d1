package settings

import (
	"context"
	"testing"

	"github.com/abofield/abofield/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.SiteSetting{}))
	return NewRepository(db)
}

func TestGetUnsetKey(t *testing.T) {
	repo := setupRepo(t)

	value, err := repo.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestSetAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "site_title", "Abofield"))

	value, err := repo.Get(ctx, "site_title")
	require.NoError(t, err)
	assert.Equal(t, "Abofield", value)
}

func TestSetUpserts(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "contact_email", "old@example.com"))
	require.NoError(t, repo.Set(ctx, "contact_email", "new@example.com"))

	value, err := repo.Get(ctx, "contact_email")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", value)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestAll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", "1"))
	require.NoError(t, repo.Set(ctx, "b", "2"))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}
