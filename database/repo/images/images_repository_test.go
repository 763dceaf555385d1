package images

import (
	"context"
	"testing"
	"time"

	"github.com/abofield/abofield/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Image{})
	require.NoError(t, err)

	return db
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	record := &models.Image{
		Name:   "Terrain",
		Origin: models.OriginExternal,
		Path:   "https://example.com/terrain.jpg",
	}
	err := repo.Create(ctx, record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Terrain", got.Name)
	assert.Equal(t, models.OriginExternal, got.Origin)
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListAllOrder(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	first := &models.Image{Name: "first", Origin: models.OriginLocal, Path: "/a.jpg"}
	require.NoError(t, repo.Create(ctx, first))
	second := &models.Image{Name: "second", Origin: models.OriginLocal, Path: "/b.jpg"}
	require.NoError(t, repo.Create(ctx, second))

	// Force distinct timestamps; sqlite time resolution can collapse them.
	require.NoError(t, repo.DB().Model(first).Update("created_at", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Error)
	require.NoError(t, repo.DB().Model(second).Update("created_at", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).Error)

	records, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Name)
	assert.Equal(t, "first", records[1].Name)
}

func TestUpdateByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	record := &models.Image{Name: "old", Origin: models.OriginLocal, Path: "/old.jpg"}
	require.NoError(t, repo.Create(ctx, record))

	updated, err := repo.UpdateByID(ctx, record.ID, map[string]interface{}{
		"name":        "new",
		"description": "updated",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Name)
	assert.Equal(t, "updated", updated.Description)
}

func TestUpdateByIDNotFound(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	_, err := repo.UpdateByID(context.Background(), "missing", map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteByID(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	record := &models.Image{Name: "gone", Origin: models.OriginLocal, Path: "/gone.jpg"}
	require.NoError(t, repo.Create(ctx, record))

	require.NoError(t, repo.DeleteByID(ctx, record.ID))

	_, err := repo.GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.DeleteByID(ctx, record.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestExistsByPath(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	record := &models.Image{Name: "logo", Origin: models.OriginLocal, Path: "/logo.jpeg"}
	require.NoError(t, repo.Create(ctx, record))

	exists, err := repo.ExistsByPath(ctx, "/logo.jpeg")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByPath(ctx, "/other.jpeg")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestListManaged(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Image{Name: "local", Origin: models.OriginLocal, Path: "/x.jpg"}))
	require.NoError(t, repo.Create(ctx, &models.Image{
		Name: "managed", Origin: models.OriginManaged, BucketName: "images", FilePath: "abc.jpg",
	}))

	records, err := repo.ListManaged(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "managed", records[0].Name)
}

func TestCount(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Create(ctx, &models.Image{Name: "a", Origin: models.OriginLocal, Path: "/a.jpg"}))

	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
