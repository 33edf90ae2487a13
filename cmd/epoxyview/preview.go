package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skisplace/epoxyview/internal/config"
	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/tui"
)

var previewFlags struct {
	apiKey    string
	apiBase   string
	projectID string
	debug     bool
	outputDir string
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Run the interactive preview wizard",
	Long: `Run the interactive preview wizard.

Walks through photo upload, style selection, and rendering, then lets you
refine the coating mask with a brush editor. The rendered preview can be
saved next to your project files.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewFlags.apiKey, "api-key", "", "Preview service API key (or EPOXYVIEW_API_KEY)")
	previewCmd.Flags().StringVar(&previewFlags.apiBase, "api-base", "", "Preview service base URL")
	previewCmd.Flags().StringVar(&previewFlags.projectID, "project-id", "", "Project identifier sent with renders")
	previewCmd.Flags().BoolVar(&previewFlags.debug, "debug", false, "Record a session event journal and request debug render payloads")
	previewCmd.Flags().StringVarP(&previewFlags.outputDir, "output-dir", "o", "", "Directory for saved preview images")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPreviewFlags(cfg)

	if err := cfg.Validate(); err != nil && !config.Exists() {
		return fmt.Errorf("no configuration found\n\nRun 'epoxyview setup' to create a config file, or set EPOXYVIEW_API_KEY")
	}

	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting preview wizard (api=%s project=%s debug=%v)", cfg.APIBase, cfg.ProjectID, cfg.Debug)
	return tui.Run(ctx, cfg)
}

// applyPreviewFlags layers CLI flags on top of the resolved config. Flags win
// over every other source.
func applyPreviewFlags(cfg *config.Config) {
	if previewFlags.apiKey != "" {
		cfg.APIKey = previewFlags.apiKey
	}
	if previewFlags.apiBase != "" {
		cfg.APIBase = previewFlags.apiBase
	}
	if previewFlags.projectID != "" {
		cfg.ProjectID = previewFlags.projectID
	}
	if previewFlags.debug {
		cfg.Debug = true
	}
	if previewFlags.outputDir != "" {
		cfg.OutputDir = previewFlags.outputDir
	}
}

func configureLogging(cfg *config.Config) {
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.Default.SetLevel(level)
	}
	if cfg.LogFile != "" {
		if f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			logger.Default.SetOutput(f)
		}
	}
}
