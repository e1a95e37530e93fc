package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/adapters/notify"
	"github.com/jsamuelsen/quote-sync/internal/adapters/view"
	"github.com/jsamuelsen/quote-sync/internal/bootstrap"
	"github.com/jsamuelsen/quote-sync/internal/platform/config"
	"github.com/jsamuelsen/quote-sync/internal/platform/logging"
)

// cli holds the persistent flags shared by every command.
type cli struct {
	configDir     string
	profile       string
	storageDriver string
	storagePath   string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Manage the local quote collection",
		Long: `quotectl reads and edits the persisted quote collection, moves it in and
out as JSON documents and reconciles it with the remote collection.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultProfile := os.Getenv("APP_ENVIRONMENT")
	if defaultProfile == "" {
		defaultProfile = "local"
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")
	flags.StringVar(&c.profile, "profile", defaultProfile, "configuration profile")
	flags.StringVar(&c.storageDriver, "storage-driver", "", "override storage.driver (bolt, sqlite, memory)")
	flags.StringVar(&c.storagePath, "storage-path", "", "override storage.path")
	flags.StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(
		newAddCmd(c),
		newListCmd(c),
		newRandomCmd(c),
		newCategoriesCmd(c),
		newRemoveCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newSyncCmd(c),
	)

	return root
}

// open loads the configuration, applies overrides and assembles the services.
// Quotes and notifications are printed to the command's output.
func (c *cli) open(cmd *cobra.Command, override func(*config.Config)) (*bootstrap.Components, error) {
	cfg, err := config.LoadFrom(c.configDir, c.profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if c.storageDriver != "" {
		cfg.Storage.Driver = c.storageDriver
	}

	if c.storagePath != "" {
		cfg.Storage.Path = c.storagePath
	}

	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewWithWriter(&logging.Config{
		Level:   c.logLevel,
		Format:  "text",
		Service: "quotectl",
		Version: cfg.App.Version,
	}, cmd.ErrOrStderr())

	out := cmd.OutOrStdout()
	writer := view.NewWriter(out)

	return bootstrap.Build(cmd.Context(), bootstrap.Options{
		Config:     cfg,
		Logger:     logger,
		Renderer:   writer,
		Prompter:   writer,
		Notifier:   notify.NewWriter(out, logger),
		Registerer: prometheus.NewRegistry(),
	})
}

// withComponents runs fn with the assembled services and closes them after.
func (c *cli) withComponents(
	cmd *cobra.Command,
	override func(*config.Config),
	fn func(ctx context.Context, comps *bootstrap.Components, out io.Writer) error,
) (err error) {
	comps, err := c.open(cmd, override)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := comps.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing storage: %w", closeErr)
		}
	}()

	return fn(cmd.Context(), comps, cmd.OutOrStdout())
}
