package publish

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
)

// AssetStatus is the lifecycle state of one asset within a run:
//
//	pending → uploading → published | failed.
type AssetStatus string

const (
	StatusPending   AssetStatus = "pending"
	StatusUploading AssetStatus = "uploading"
	StatusPublished AssetStatus = "published"
	StatusFailed    AssetStatus = "failed"
)

// ErrFileNotFound is the failure recorded for an entry whose local file does
// not exist. No storage call is made for such an entry.
var ErrFileNotFound = errors.New("file not found")

// Result is the outcome of publishing one manifest entry. Exactly one of URL
// and Err is set.
type Result struct {
	Entry manifest.Entry

	// URL is the direct public URL of the published object.
	URL string

	// Err describes why the entry was not published.
	Err error
}

// Succeeded reports whether the entry was uploaded and made public.
func (r Result) Succeeded() bool {
	return r.Err == nil
}

// Missing reports whether the entry failed its local existence check.
func (r Result) Missing() bool {
	return errors.Is(r.Err, ErrFileNotFound)
}

// asset is the mutable per-entry state of a run.
type asset struct {
	status    AssetStatus
	url       string
	err       error
	updatedAt time.Time
}

// Run records the progress of a single publish pass over a manifest. It is
// safe for concurrent use by per-entry workers; each worker only touches its
// own index.
type Run struct {
	ID        string
	StartedAt time.Time

	mu       sync.RWMutex
	manifest manifest.Manifest
	assets   []asset
}

func newRun(m manifest.Manifest) *Run {
	now := time.Now()
	assets := make([]asset, len(m))
	for i := range assets {
		assets[i] = asset{status: StatusPending, updatedAt: now}
	}
	return &Run{
		ID:        uuid.New().String(),
		StartedAt: now,
		manifest:  m,
		assets:    assets,
	}
}

// Status returns the current state of the entry at index i.
func (r *Run) Status(i int) AssetStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assets[i].status
}

func (r *Run) markUploading(i int) {
	r.update(i, func(a *asset) {
		a.status = StatusUploading
	})
}

func (r *Run) markPublished(i int, url string) {
	r.update(i, func(a *asset) {
		a.status = StatusPublished
		a.url = url
	})
}

func (r *Run) markFailed(i int, err error) {
	r.update(i, func(a *asset) {
		a.status = StatusFailed
		a.err = err
	})
}

func (r *Run) update(i int, fn func(*asset)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.assets[i])
	r.assets[i].updatedAt = time.Now()
}

// Results returns one Result per manifest entry, in manifest order. Entries
// that never reached a terminal state are reported as failed.
func (r *Run) Results() []Result {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Result, len(r.manifest))
	for i, e := range r.manifest {
		a := r.assets[i]
		res := Result{Entry: e}
		switch a.status {
		case StatusPublished:
			res.URL = a.url
		case StatusFailed:
			res.Err = a.err
		default:
			res.Err = errors.New("not processed")
		}
		results[i] = res
	}
	return results
}
