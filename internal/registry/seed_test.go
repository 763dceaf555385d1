package registry

import (
	"context"
	"testing"

	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeeder(t *testing.T) (*Seeder, *images.Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Image{}))

	repo := images.NewRepository(db)
	return NewSeeder(repo), repo
}

func TestDefaultCatalogue(t *testing.T) {
	catalogue := DefaultCatalogue()
	assert.Len(t, catalogue, 9)

	for _, entry := range catalogue {
		assert.NotEmpty(t, entry.Name)
		assert.NotEmpty(t, entry.Path)
		assert.True(t, entry.Origin.Valid())
		assert.NotEqual(t, models.OriginManaged, entry.Origin,
			"catalogue entries never reference our own bucket")
	}
}

func TestEnsureSeededFillsEmptyTable(t *testing.T) {
	seeder, repo := setupSeeder(t)
	ctx := context.Background()

	inserted, err := seeder.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
}

func TestEnsureSeededSkipsNonEmptyTable(t *testing.T) {
	seeder, repo := setupSeeder(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Image{
		Name: "existing", Origin: models.OriginLocal, Path: "/existing.jpg",
	}))

	inserted, err := seeder.EnsureSeeded(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSeedIsIdempotent(t *testing.T) {
	seeder, repo := setupSeeder(t)
	ctx := context.Background()

	inserted, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, inserted)

	inserted, err = seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
}

func TestSeedFillsOnlyMissingEntries(t *testing.T) {
	seeder, repo := setupSeeder(t)
	ctx := context.Background()

	// Pre-insert one catalogue entry under its canonical path.
	first := DefaultCatalogue()[0]
	require.NoError(t, repo.Create(ctx, &first))

	inserted, err := seeder.Seed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, inserted)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
}
