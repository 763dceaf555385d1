package registry

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/models"
	"github.com/abofield/abofield/database/repo/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeStore is an in-memory blob store for tests.
type fakeStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string][]byte)}
}

func (s *fakeStore) SaveWithContext(ctx context.Context, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *fakeStore) GetWithContext(ctx context.Context, key string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStore) DeleteWithContext(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.blobs[key]
	return ok, nil
}

func (s *fakeStore) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (s *fakeStore) Health(ctx context.Context) error { return nil }

func (s *fakeStore) Name() string { return "fake" }

func setupService(t *testing.T) (*Service, *fakeStore, *images.Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Image{}))

	repo := images.NewRepository(db)
	store := newFakeStore()
	return NewService(repo, store, "images"), store, repo
}

func TestServiceMode(t *testing.T) {
	svc, _, _ := setupService(t)
	assert.Equal(t, config.ModeLive, svc.Mode())
}

func TestCreateExternal(t *testing.T) {
	svc, _, _ := setupService(t)

	record, err := svc.Create(context.Background(), CreateInput{
		Name:        "Terrain",
		Description: "Terrain de sport",
		IsExternal:  true,
		ExternalURL: "https://example.com/terrain.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OriginExternal, record.Origin)
	assert.Equal(t, "https://example.com/terrain.jpg", record.Path)
	assert.NotEmpty(t, record.ID)
}

func TestCreateExternalRequiresURL(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		Name:       "broken",
		IsExternal: true,
	})
	assert.Error(t, err)
}

func TestCreateManagedUploadsBlob(t *testing.T) {
	svc, store, _ := setupService(t)

	record, err := svc.Create(context.Background(), CreateInput{
		Name:     "Upload",
		File:     strings.NewReader("image bytes"),
		FileName: "photo.JPG",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OriginManaged, record.Origin)
	assert.Equal(t, "images", record.BucketName)
	assert.True(t, strings.HasSuffix(record.FilePath, ".jpg"), "extension should be lowercased")

	exists, err := store.Exists(context.Background(), record.FilePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateRequiresName(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Create(context.Background(), CreateInput{
		File:     strings.NewReader("x"),
		FileName: "a.png",
	})
	assert.Error(t, err)
}

func TestUpdateMetadata(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateInput{
		Name:       "before",
		IsExternal: true, ExternalURL: "https://example.com/a.jpg",
	})
	require.NoError(t, err)

	newName := "after"
	found, err := svc.Update(ctx, record.ID, UpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Name)
}

func TestUpdateFileConvertsToManaged(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateInput{
		Name:       "conv",
		IsExternal: true, ExternalURL: "https://example.com/a.jpg",
	})
	require.NoError(t, err)

	found, err := svc.Update(ctx, record.ID, UpdateInput{
		File:     strings.NewReader("fresh bytes"),
		FileName: "fresh.png",
	})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OriginManaged, got.Origin)
	assert.Empty(t, got.Path)
	assert.NotEmpty(t, got.FilePath)

	exists, err := store.Exists(ctx, got.FilePath)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUpdateFileRotatesKey(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateInput{
		Name:     "rotate",
		File:     strings.NewReader("v1"),
		FileName: "v1.png",
	})
	require.NoError(t, err)
	oldKey := record.FilePath

	found, err := svc.Update(ctx, record.ID, UpdateInput{
		File:     strings.NewReader("v2"),
		FileName: "v2.png",
	})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, got.FilePath)

	exists, err := store.Exists(ctx, oldKey)
	require.NoError(t, err)
	assert.False(t, exists, "old blob should be deleted")
}

func TestUpdateNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	name := "x"
	found, err := svc.Update(context.Background(), "missing", UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteManagedRemovesBlob(t *testing.T) {
	svc, store, _ := setupService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateInput{
		Name:     "doomed",
		File:     strings.NewReader("bytes"),
		FileName: "d.png",
	})
	require.NoError(t, err)

	found, err := svc.Delete(ctx, record.ID)
	require.NoError(t, err)
	assert.True(t, found)

	exists, err := store.Exists(ctx, record.FilePath)
	require.NoError(t, err)
	assert.False(t, exists)

	// Double delete is benign.
	found, err = svc.Delete(ctx, record.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateUsage(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateInput{
		Name:       "usage",
		IsExternal: true, ExternalURL: "https://example.com/u.jpg",
	})
	require.NoError(t, err)

	found, err := svc.UpdateUsage(ctx, record.ID, []string{"Hero", "About"})
	require.NoError(t, err)
	assert.True(t, found)

	got, err := svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"Hero", "About"}, got.UsedIn)

	// Nil clears the list rather than failing.
	found, err = svc.UpdateUsage(ctx, record.ID, nil)
	require.NoError(t, err)
	assert.True(t, found)

	got, err = svc.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, got.UsedIn)
}

func TestUpdateUsageNotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	found, err := svc.UpdateUsage(context.Background(), "missing", []string{"x"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpenManagedStreamsBlob(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	record, err := svc.Create(ctx, CreateInput{
		Name:     "stream",
		File:     strings.NewReader("blob content"),
		FileName: "s.png",
	})
	require.NoError(t, err)

	reader, err := svc.Open(ctx, record)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	assert.Equal(t, "blob content", string(data))
}

func TestOpenNonManaged(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Open(context.Background(), &models.Image{
		Origin: models.OriginExternal, Path: "https://example.com/x.jpg",
	})
	assert.ErrorIs(t, err, ErrNoBlob)
}

func TestPublicURL(t *testing.T) {
	svc, _, _ := setupService(t)

	managed := &models.Image{Origin: models.OriginManaged, BucketName: "images", FilePath: "k.png"}
	assert.Equal(t, "https://cdn.example.com/k.png", svc.PublicURL(managed))

	external := &models.Image{Origin: models.OriginExternal, Path: "https://example.com/e.jpg"}
	assert.Equal(t, "https://example.com/e.jpg", svc.PublicURL(external))

	local := &models.Image{Origin: models.OriginLocal, Path: "/jeux.jpg"}
	assert.Equal(t, "/jeux.jpg", svc.PublicURL(local))
}
