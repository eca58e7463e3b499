package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/publish"
	"github.com/tomasbasham/minigame-publish/internal/storage"
	"github.com/tomasbasham/minigame-publish/internal/verify"
)

type VerifyOptions struct {
	root     *RootOptions
	manifest manifest.Manifest

	BaseURL           string
	NavigationTimeout time.Duration
	TotalTimeout      time.Duration
}

var (
	verifyLong = templates.LongDesc(`
		Load the public URL of every bundle in headless Chrome and check that
		it is served as an HTML document.`)

	verifyExample = templates.Examples(`
		# Check the bundles in the configured bucket
		minigames verify

		# Check a local preview server instead
		minigames verify --base-url http://localhost:8080`)
)

func NewVerifyOptions(root *RootOptions) *VerifyOptions {
	return &VerifyOptions{
		root: root,
	}
}

func NewVerifyCommand(o *VerifyOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify",
		Short:   "Check the published bundles in a headless browser",
		Long:    verifyLong,
		Example: verifyExample,
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

	cmd.Flags().StringVar(&o.BaseURL, "base-url", "", "Origin to load bundles from instead of storage.googleapis.com")
	cmd.Flags().DurationVarP(&o.NavigationTimeout, "navigation-timeout", "n", 10*time.Second, "Per-page timeout")
	cmd.Flags().DurationVarP(&o.TotalTimeout, "total-timeout", "t", 60*time.Second, "Timeout for the whole check")

	return cmd
}

func (o *VerifyOptions) Complete(cmd *cobra.Command, args []string) error {
	m, err := o.root.loadManifest()
	if err != nil {
		return err
	}
	o.manifest = m
	o.BaseURL = strings.TrimSuffix(o.BaseURL, "/")
	return nil
}

func (o *VerifyOptions) Validate() error {
	if o.BaseURL != "" && !strings.HasPrefix(o.BaseURL, "http://") && !strings.HasPrefix(o.BaseURL, "https://") {
		return fmt.Errorf("base URL %q must start with http:// or https://", o.BaseURL)
	}
	return nil
}

func (o *VerifyOptions) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	browser, err := verify.NewBrowser(ctx, verify.Options{
		NavigationTimeout: o.NavigationTimeout,
		TotalTimeout:      o.TotalTimeout,
	})
	if err != nil {
		return err
	}
	defer browser.Close()

	targets := o.targets()
	fmt.Fprintf(o.root.Out, "Verifying %d bundle(s)...\n", len(targets))

	if failed := verify.Write(o.root.Out, verify.Check(ctx, browser, targets)); failed > 0 {
		o.root.Status = publish.ExitFailure
		return fmt.Errorf("%d of %d bundle(s) failed verification", failed, len(targets))
	}
	return nil
}

func (o *VerifyOptions) targets() []verify.Target {
	cfg := o.root.Config
	targets := make([]verify.Target, 0, len(o.manifest))
	for _, e := range o.manifest {
		url := storage.URLsFor(cfg.Bucket, cfg.Folder, e.Name).Direct
		if o.BaseURL != "" {
			url = o.BaseURL + strings.TrimPrefix(url, storage.DirectOrigin)
		}
		targets = append(targets, verify.Target{Name: e.Name, URL: url})
	}
	return targets
}
