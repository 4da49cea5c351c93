// Package main provides the CLI entrypoint for soundcue.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mekkanized/soundcue/internal/api"
	"github.com/mekkanized/soundcue/internal/catalog"
	"github.com/mekkanized/soundcue/internal/config"
	"github.com/mekkanized/soundcue/internal/presence"
	"github.com/mekkanized/soundcue/internal/sound"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		assetsDir  string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "soundcue",
	Short: "Event sound playback for the client",
	Long: `soundcue plays the short audio cues bound to client events
(posts, notifications, reactions, ...) and provides preview and
inspection tooling for configured sounds.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if globalOpts.assetsDir != "" {
			cfg.Audio.AssetsDir = globalOpts.assetsDir
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/soundcue/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.assetsDir, "assets-dir", "",
		"Override the bundled assets directory")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// newCatalog loads the bundled sound catalog.
func newCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(afero.NewOsFs(), cfg.Audio.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load sound catalog: %w", err)
	}
	return cat, nil
}

// newService wires up the playback service from configuration.
func newService() (*sound.Service, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.BaseURL, logger)
	cache := sound.NewBufferCache()
	loader := sound.NewLoader(afero.NewOsFs(), cat, client, client, cache, logger)
	engine := sound.NewEngine(nil, logger)
	gate := presence.NewDBusGate(logger)

	svc := sound.NewService(cfg, gate, loader, engine, logger,
		sound.WithCooldown(cfg.Audio.Cooldown.Duration()))
	return svc, nil
}

// newProbe wires up a duration probe from configuration.
func newProbe() *sound.DurationProbe {
	client := api.NewClient(cfg.API.BaseURL, logger)
	return sound.NewDurationProbe(client, logger,
		sound.WithProbeTimeout(cfg.Probe.Timeout.Duration()),
		sound.WithProbeInterval(cfg.Probe.Interval.Duration()))
}
