// Package publish uploads the manifest's bundles to object storage and
// decides the outcome of a run.
//
// Every entry is handled in isolation: a missing file, a failed upload or a
// failed public-access grant is recorded against that entry and the run moves
// on. Only errors that happen before any entry is touched (bad credentials,
// unreachable bucket) abort the run.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/report"
	"github.com/tomasbasham/minigame-publish/internal/storage"
)

// Warner prints operator-facing warnings.
type Warner interface {
	Warn(message string)
}

// Publisher uploads manifest entries through an Uploader.
type Publisher struct {
	Uploader storage.Uploader
	Bucket   string
	Folder   string

	// CacheControl is attached to every object. Defaults to
	// storage.DefaultCacheControl.
	CacheControl string

	// Concurrency bounds how many entries are in flight at once. Values
	// below 2 publish sequentially.
	Concurrency int

	Out    io.Writer
	ErrOut io.Writer
	Warn   Warner

	mu sync.Mutex
}

// Publish uploads every entry of m and returns one Result per entry in
// manifest order, regardless of completion order.
func (p *Publisher) Publish(ctx context.Context, m manifest.Manifest) []Result {
	run := newRun(m)

	p.printf(p.Out, "Publishing %d asset(s) to gs://%s/%s (run %s)\n", len(m), p.Bucket, p.Folder, run.ID)

	limit := p.Concurrency
	if limit < 1 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, e := range m {
		g.Go(func() error {
			p.publishEntry(ctx, run, i, e)
			return nil
		})
	}
	_ = g.Wait()

	return run.Results()
}

func (p *Publisher) publishEntry(ctx context.Context, run *Run, i int, e manifest.Entry) {
	if !manifest.Exists(e) {
		run.markFailed(i, fmt.Errorf("%w: %s", ErrFileNotFound, e.LocalPath))
		p.warnf("%s: file not found at %s, skipping", e.Name, e.LocalPath)
		return
	}

	f, err := os.Open(e.LocalPath)
	if err != nil {
		run.markFailed(i, fmt.Errorf("open: %w", err))
		p.printf(p.ErrOut, "Error: %s: failed to open %s: %v\n", e.Name, e.LocalPath, err)
		return
	}
	defer f.Close()

	cacheControl := p.CacheControl
	if cacheControl == "" {
		cacheControl = storage.DefaultCacheControl
	}

	objectName := storage.ObjectPath(p.Folder, e.Name)
	run.markUploading(i)

	uploaded, err := p.Uploader.Upload(ctx, &storage.UploadRequest{
		ObjectName:   objectName,
		Content:      f,
		ContentType:  storage.ContentTypeHTML,
		CacheControl: cacheControl,
	})
	if err != nil {
		run.markFailed(i, fmt.Errorf("upload: %w", err))
		p.printf(p.ErrOut, "Error: %s: upload failed: %v\n", e.Name, err)
		return
	}

	// The access grant must follow its own upload; the object does not exist
	// before then.
	if err := p.Uploader.MakePublic(ctx, objectName); err != nil {
		run.markFailed(i, fmt.Errorf("make public: %w", err))
		p.printf(p.ErrOut, "Error: %s: uploaded but could not be made public: %v\n", e.Name, err)
		return
	}

	url := storage.DirectURL(p.Bucket, objectName)
	run.markPublished(i, url)
	p.printf(p.Out, "  %s: published (%d bytes) %s\n", e.Name, uploaded.Size, url)
}

// Summary prints the outcome counts, each failure with its cause, and both
// URL forms of every entry that was present locally.
func Summary(w io.Writer, bucket, folder string, results []Result) {
	published := 0
	var present manifest.Manifest
	for _, r := range results {
		if r.Succeeded() {
			published++
		}
		if !r.Missing() {
			present = append(present, r.Entry)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d published, %d failed\n", published, len(results)-published)
	for _, r := range results {
		if !r.Succeeded() {
			fmt.Fprintf(w, "  %s: FAILED (%v)\n", r.Entry.Name, r.Err)
		}
	}

	if len(present) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Public URLs:")
	report.WriteURLs(w, bucket, folder, present)
}

func (p *Publisher) printf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

func (p *Publisher) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if p.Warn == nil {
		p.printf(p.ErrOut, "Warning: %s\n", msg)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Warn.Warn(msg)
}
