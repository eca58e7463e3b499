package publish

import (
	"context"
	"fmt"
	"io"

	"github.com/tomasbasham/minigame-publish/internal/credentials"
	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/report"
	"github.com/tomasbasham/minigame-publish/internal/storage"
)

// ExitStatus is the process exit code of a publish run.
type ExitStatus int

const (
	ExitSuccess      ExitStatus = 0
	ExitFailure      ExitStatus = 1
	ExitPartial      ExitStatus = 2
	ExitManualAction ExitStatus = 3
)

func (s ExitStatus) String() string {
	switch s {
	case ExitSuccess:
		return "success"
	case ExitFailure:
		return "failure"
	case ExitPartial:
		return "partial success"
	case ExitManualAction:
		return "manual action needed"
	default:
		return fmt.Sprintf("ExitStatus(%d)", int(s))
	}
}

// Aggregate derives the exit status of an authenticated run. An empty result
// set counts as success.
func Aggregate(results []Result) ExitStatus {
	succeeded := 0
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		}
	}
	switch {
	case succeeded == len(results):
		return ExitSuccess
	case succeeded == 0:
		return ExitFailure
	default:
		return ExitPartial
	}
}

// Config is everything a run needs to know about what to publish and where.
type Config struct {
	// Bucket is the target bucket. When empty the credentials decide.
	Bucket string

	// Folder is the object prefix every asset is published under.
	Folder string

	// Manifest is the ordered list of assets in scope.
	Manifest manifest.Manifest

	CacheControl string
	Concurrency  int
}

// CredentialResolver finds the credentials for a run.
type CredentialResolver interface {
	Resolve() (credentials.Result, error)
}

// UploaderFactory connects to the bucket named by creds. An error aborts the
// run before any entry is processed.
type UploaderFactory func(ctx context.Context, creds *credentials.Credentials) (storage.Uploader, error)

// Orchestrator resolves credentials and then either prints manual
// instructions or publishes the manifest.
type Orchestrator struct {
	Config      Config
	Resolver    CredentialResolver
	NewUploader UploaderFactory

	Out    io.Writer
	ErrOut io.Writer
	Warn   Warner
}

// Run executes a single publish pass. The returned error is non-nil only for
// configuration failures, in which case the status is ExitFailure and no
// results are produced.
func (o *Orchestrator) Run(ctx context.Context) (ExitStatus, []Result, error) {
	if o.Out == nil {
		o.Out = io.Discard
	}
	if o.ErrOut == nil {
		o.ErrOut = io.Discard
	}

	res, err := o.Resolver.Resolve()
	if err != nil {
		return ExitFailure, nil, err
	}

	switch res := res.(type) {
	case credentials.Unauthenticated:
		fmt.Fprintf(o.ErrOut, "No credential artifact at %s\n", res.Path)
		r := &report.Reporter{Out: o.Out, CacheControl: o.Config.CacheControl}
		r.Report(o.Config.Manifest, o.Config.Bucket, o.Config.Folder)
		return ExitManualAction, nil, nil

	case credentials.Authenticated:
		return o.publish(ctx, res.Credentials)

	default:
		return ExitFailure, nil, fmt.Errorf("unexpected credential result %T", res)
	}
}

func (o *Orchestrator) publish(ctx context.Context, creds *credentials.Credentials) (ExitStatus, []Result, error) {
	uploader, err := o.NewUploader(ctx, creds)
	if err != nil {
		return ExitFailure, nil, err
	}
	if c, ok := uploader.(io.Closer); ok {
		defer c.Close()
	}

	p := &Publisher{
		Uploader:     uploader,
		Bucket:       creds.Bucket,
		Folder:       o.Config.Folder,
		CacheControl: o.Config.CacheControl,
		Concurrency:  o.Config.Concurrency,
		Out:          o.Out,
		ErrOut:       o.ErrOut,
		Warn:         o.Warn,
	}

	results := p.Publish(ctx, o.Config.Manifest)
	Summary(o.Out, creds.Bucket, o.Config.Folder, results)

	return Aggregate(results), results, nil
}
