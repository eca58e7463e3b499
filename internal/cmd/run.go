package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/minigame-publish/internal/credentials"
	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/publish"
	"github.com/tomasbasham/minigame-publish/internal/storage"
	"github.com/tomasbasham/minigame-publish/internal/verify"
)

type RunOptions struct {
	root     *RootOptions
	manifest manifest.Manifest

	TargetDir         string
	Verify            bool
	NavigationTimeout time.Duration
}

var (
	runLong = templates.LongDesc(`
		Upload every bundle in the manifest and make it publicly readable.

		Without a service-account key, print the steps to upload the bundles
		by hand instead. Exit codes: 0 success, 1 failure, 2 partial success,
		3 manual action needed.`)

	runExample = templates.Examples(`
		# Publish the built-in bundles from ./mini-games
		minigames run

		# Publish into a local directory laid out like the bucket
		minigames run --target-dir ./out

		# Publish, then load every published URL in headless Chrome
		minigames run --verify`)
)

func NewRunOptions(root *RootOptions) *RunOptions {
	return &RunOptions{
		root: root,
	}
}

func NewRunCommand(o *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Publish the mini-game bundles",
		Long:    runLong,
		Example: runExample,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Run(); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&o.TargetDir, "target-dir", "", "Write objects to this directory instead of the bucket")
	cmd.Flags().BoolVar(&o.Verify, "verify", false, "Load every published URL in headless Chrome afterwards")
	cmd.Flags().DurationVarP(&o.NavigationTimeout, "navigation-timeout", "n", 10*time.Second, "Per-page timeout for --verify")
	cmd.Flags().IntVar(&o.root.Config.Concurrency, "concurrency", o.root.Config.Concurrency, "Number of bundles uploaded at once")

	return cmd
}

func (o *RunOptions) Complete(cmd *cobra.Command, args []string) error {
	m, err := o.root.loadManifest()
	if err != nil {
		o.root.Status = publish.ExitFailure
		return err
	}
	o.manifest = m
	return nil
}

func (o *RunOptions) Validate() error {
	if o.Verify && o.TargetDir != "" {
		return fmt.Errorf("--verify cannot be combined with --target-dir")
	}
	return nil
}

func (o *RunOptions) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := o.root.Config
	orchestrator := &publish.Orchestrator{
		Config: publish.Config{
			Bucket:       cfg.Bucket,
			Folder:       cfg.Folder,
			Manifest:     o.manifest,
			CacheControl: cfg.CacheControl(),
			Concurrency:  cfg.Concurrency,
		},
		Resolver:    &credentials.Resolver{Path: cfg.CredentialsPath, Bucket: cfg.Bucket},
		NewUploader: o.newUploader,
		Out:         o.root.Out,
		ErrOut:      o.root.ErrOut,
		Warn:        o.root.warn,
	}

	status, results, err := orchestrator.Run(ctx)
	o.root.Status = status
	if err != nil {
		return err
	}

	if o.Verify {
		o.verify(ctx, results)
	}

	fmt.Fprintf(o.root.Out, "Result: %s\n", status)
	return nil
}

func (o *RunOptions) newUploader(ctx context.Context, creds *credentials.Credentials) (storage.Uploader, error) {
	if o.TargetDir != "" {
		return storage.NewLocalUploader(o.TargetDir, creds.Bucket)
	}
	return storage.NewGCSUploader(ctx, creds.Bucket, creds.ClientOptions()...)
}

// verify loads the published URLs. Its findings are advisory and do not
// change the run's exit status.
func (o *RunOptions) verify(ctx context.Context, results []publish.Result) {
	var targets []verify.Target
	for _, r := range results {
		if r.Succeeded() {
			targets = append(targets, verify.Target{Name: r.Entry.Name, URL: r.URL})
		}
	}
	if len(targets) == 0 {
		return
	}

	browser, err := verify.NewBrowser(ctx, verify.Options{NavigationTimeout: o.NavigationTimeout})
	if err != nil {
		fmt.Fprintf(o.root.ErrOut, "Skipping verification: %v\n", err)
		return
	}
	defer browser.Close()

	fmt.Fprintln(o.root.Out)
	fmt.Fprintln(o.root.Out, "Verification:")
	if failed := verify.Write(o.root.Out, verify.Check(ctx, browser, targets)); failed > 0 {
		o.root.warn.Warn(fmt.Sprintf("%d published bundle(s) failed verification", failed))
	}
}
