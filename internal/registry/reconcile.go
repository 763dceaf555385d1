package registry

import (
	"context"
	"log"
	"time"

	"github.com/abofield/abofield/database/repo/images"
	"github.com/abofield/abofield/storage"
	"golang.org/x/sync/errgroup"
)

// Reconciler periodically checks that every managed record still has its
// blob. Partial failures between the blob store and the metadata table are
// tolerated, not hidden: the sweep only reports, it never deletes.
type Reconciler struct {
	repo      images.RepositoryInterface
	store     storage.Provider
	interval  time.Duration
	batchSize int
	stopCh    chan struct{}
}

// NewReconciler creates a reconciliation sweeper.
func NewReconciler(repo images.RepositoryInterface, store storage.Provider, interval time.Duration) *Reconciler {
	return &Reconciler{
		repo:      repo,
		store:     store,
		interval:  interval,
		batchSize: 500,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop in the background. The first sweep runs
// immediately.
func (r *Reconciler) Start() {
	ticker := time.NewTicker(r.interval)
	go func() {
		r.sweep()

		for {
			select {
			case <-ticker.C:
				r.sweep()
			case <-r.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
	log.Printf("Reconciliation sweep started, interval %v", r.interval)
}

// Stop halts the sweep loop.
func (r *Reconciler) Stop() {
	close(r.stopCh)
}

// sweep checks every managed record's blob and logs dangling metadata.
func (r *Reconciler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := r.repo.ListManaged(ctx, r.batchSize)
	if err != nil {
		log.Printf("Reconciliation sweep failed to list managed images: %v", err)
		return
	}

	if len(records) == 0 {
		return
	}

	var dangling int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	results := make([]bool, len(records))
	for i, record := range records {
		i, record := i, record
		g.Go(func() error {
			exists, err := r.store.Exists(ctx, record.FilePath)
			if err != nil {
				log.Printf("Reconciliation check failed for %s/%s: %v",
					record.BucketName, record.FilePath, err)
				results[i] = true // do not count unreachable blobs as missing
				return nil
			}
			results[i] = exists
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Reconciliation sweep aborted: %v", err)
		return
	}

	for i, exists := range results {
		if !exists {
			dangling++
			log.Printf("Dangling metadata: image %s (%s) has no blob at %s/%s",
				records[i].ID, records[i].Name, records[i].BucketName, records[i].FilePath)
		}
	}

	if dangling > 0 {
		log.Printf("Reconciliation sweep finished: %d of %d managed images missing their blob",
			dangling, len(records))
	}
}
