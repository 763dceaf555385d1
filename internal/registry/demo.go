package registry

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/abofield/abofield/config"
	"github.com/abofield/abofield/database/models"
)

// DemoRegistry serves the fixed default catalogue from memory when no
// backend is configured. Reads work; every mutation reports ErrDemoMode.
type DemoRegistry struct {
	mu      sync.RWMutex
	records []*models.Image
}

// NewDemoRegistry builds the in-memory catalogue.
func NewDemoRegistry() *DemoRegistry {
	catalogue := DefaultCatalogue()
	records := make([]*models.Image, 0, len(catalogue))

	// Fixed IDs and ascending timestamps keep the demo listing stable
	// between runs.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range catalogue {
		record := catalogue[i]
		record.ID = demoID(i + 1)
		record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		record.UpdatedAt = record.CreatedAt
		records = append(records, &record)
	}

	return &DemoRegistry{records: records}
}

func demoID(n int) string {
	const digits = "0123456789"
	if n < 10 {
		return string(digits[n])
	}
	return string(digits[n/10]) + string(digits[n%10])
}

// Mode reports the resolved operating mode.
func (r *DemoRegistry) Mode() config.Mode {
	return config.ModeDemo
}

// List returns the demo catalogue, most recent first.
func (r *DemoRegistry) List(ctx context.Context) ([]*models.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Image, len(r.records))
	copy(out, r.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns one demo record, or (nil, nil) when the ID is unknown.
func (r *DemoRegistry) Get(ctx context.Context, id string) (*models.Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

// Open always fails: the demo catalogue holds no managed blobs.
func (r *DemoRegistry) Open(ctx context.Context, record *models.Image) (io.ReadCloser, error) {
	return nil, ErrNoBlob
}

// Create is disabled in demo mode.
func (r *DemoRegistry) Create(ctx context.Context, in CreateInput) (*models.Image, error) {
	return nil, ErrDemoMode
}

// Update is disabled in demo mode.
func (r *DemoRegistry) Update(ctx context.Context, id string, in UpdateInput) (bool, error) {
	return false, ErrDemoMode
}

// Delete is disabled in demo mode.
func (r *DemoRegistry) Delete(ctx context.Context, id string) (bool, error) {
	return false, ErrDemoMode
}

// UpdateUsage is disabled in demo mode.
func (r *DemoRegistry) UpdateUsage(ctx context.Context, id string, usedIn []string) (bool, error) {
	return false, ErrDemoMode
}

// PublicURL resolves demo records to their bundled path or external URL.
func (r *DemoRegistry) PublicURL(record *models.Image) string {
	return record.Path
}

var _ Registry = (*DemoRegistry)(nil)
