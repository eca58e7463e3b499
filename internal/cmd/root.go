package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	cliflag "github.com/tomasbasham/cli-runtime/flag"
	"github.com/tomasbasham/cli-runtime/iooption"
	"github.com/tomasbasham/cli-runtime/printer"
	"github.com/tomasbasham/cli-runtime/templates"

	"github.com/tomasbasham/minigame-publish/internal/config"
	"github.com/tomasbasham/minigame-publish/internal/manifest"
	"github.com/tomasbasham/minigame-publish/internal/publish"
)

var (
	rootLong = templates.LongDesc(`
		Publish the mini-game bundles to the app's Firebase Storage bucket.

		Settings can also be supplied through PUBLISH_* environment variables;
		flags take precedence.`)

	rootExamples = templates.Examples(`
		# Upload every bundle using ./service-account.json
		minigames run

		# Check the published URLs in a headless browser
		minigames verify`)

	// Injected at build time using ldflags.
	version = ""
	commit  = ""
)

// RootOptions defines the options shared by every `minigames` subcommand.
type RootOptions struct {
	Config config.Config

	// Status is the exit status of the last subcommand that ran.
	Status publish.ExitStatus

	configErr error
	warn      publish.Warner

	iooption.IOStreams
}

// NewRootOptions provides an initialised RootOptions instance with settings
// loaded from the environment.
func NewRootOptions(streams iooption.IOStreams) *RootOptions {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	return &RootOptions{
		Config:    cfg,
		configErr: err,
		IOStreams: streams,
	}
}

// NewRootCommand creates the `minigames` command with default arguments.
func NewRootCommand() (*cobra.Command, *RootOptions) {
	options := NewRootOptions(iooption.IOStreams{
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	})

	return NewRootCommandWithArgs(options), options
}

// NewRootCommandWithArgs creates the `minigames` command and its nested
// children.
func NewRootCommandWithArgs(o *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "minigames [command]",
		Version:               versionInfo(),
		DisableFlagsInUseLine: true,
		Short:                 "Mini-game bundle publisher",
		Long:                  rootLong,
		Example:               rootExamples,
		SilenceErrors:         true,
		SilenceUsage:          true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.configErr != nil {
				return o.configErr
			}
			return o.Config.Validate()
		},
	}

	printerOpts := printer.WarningPrinterOptions{Color: true}
	printer := printer.NewWarningPrinter(o.ErrOut, printerOpts)
	cmd.SetGlobalNormalizationFunc(cliflag.WarnWordSepNormalizeFunc(printer))
	o.warn = printer

	// Add persistent config flags.
	pflags := cmd.PersistentFlags()

	pflags.StringVarP(&o.Config.Bucket, "bucket", "b", o.Config.Bucket, "Storage bucket to publish into")
	pflags.StringVar(&o.Config.Folder, "folder", o.Config.Folder, "Object prefix for every bundle")
	pflags.StringVarP(&o.Config.CredentialsPath, "credentials", "c", o.Config.CredentialsPath, "Path to the service-account key")
	pflags.StringVarP(&o.Config.AssetsDir, "assets-dir", "d", o.Config.AssetsDir, "Directory holding the bundles")
	pflags.StringVarP(&o.Config.ManifestPath, "manifest", "m", o.Config.ManifestPath, "YAML manifest overriding the built-in bundle list")
	pflags.DurationVar(&o.Config.CacheMaxAge, "cache-max-age", o.Config.CacheMaxAge, "Cache-Control max-age for published bundles")

	cmd.AddCommand(NewRunCommand(NewRunOptions(o)))
	cmd.AddCommand(NewVerifyCommand(NewVerifyOptions(o)))
	cmd.AddCommand(NewPreviewCommand(NewPreviewOptions(o)))

	// The globlal normalisation function ensures that all flags specified meet
	// the desired format, changing users' input if necessary.
	cmd.SetGlobalNormalizationFunc(cliflag.WordSepNormalizeFunc())

	return cmd
}

// ExitCode returns the process exit code for the last subcommand.
func (o *RootOptions) ExitCode() int {
	return int(o.Status)
}

func (o *RootOptions) loadManifest() (manifest.Manifest, error) {
	m, err := o.Config.Manifest()
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func versionInfo() string {
	if version == "" {
		return ""
	}
	return fmt.Sprintf("%s (commit: %s)", version, commit)
}
