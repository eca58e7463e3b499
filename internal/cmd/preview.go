package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/server"
)

type PreviewOptions struct {
	root     *RootOptions
	manifest manifest.Manifest

	Port int
}

var (
	previewLong = templates.LongDesc(`
		Serve the local bundles over HTTP at the same paths they have in the
		bucket, with the same content type and cache headers.`)

	previewExample = templates.Examples(`
		# Start on the default port
		minigames preview

		# Start on a custom port
		minigames preview --port 9090`)
)

func NewPreviewOptions(root *RootOptions) *PreviewOptions {
	return &PreviewOptions{
		root: root,
	}
}

func NewPreviewCommand(o *PreviewOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preview",
		Short:   "Serve the local bundles for client development",
		Long:    previewLong,
		Example: previewExample,
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

	cmd.Flags().IntVarP(&o.Port, "port", "p", 8080, "Port to listen on")

	return cmd
}

func (o *PreviewOptions) Complete(cmd *cobra.Command, args []string) error {
	m, err := o.root.loadManifest()
	if err != nil {
		return err
	}
	o.manifest = m
	return nil
}

func (o *PreviewOptions) Validate() error {
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	return nil
}

func (o *PreviewOptions) Run() error {
	cfg := o.root.Config
	srv := server.New(o.manifest, cfg.Bucket, cfg.Folder, cfg.CacheControl())

	addr := fmt.Sprintf(":%d", o.Port)
	fmt.Fprintf(o.root.Out, "Serving %d bundle(s) on %s (manifest at http://localhost%s/manifest)\n", len(o.manifest), addr, addr)
	return srv.ListenAndServe(addr)
}
