package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/config"
	"github.com/skisplace/epoxyview/internal/journal"
)

var doctorFlags struct {
	replay string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and service connectivity",
	Long: `Check configuration and service connectivity.

Reports where each configuration value was resolved from, verifies the
preview service is reachable with the configured key, and can replay a
recorded debug session journal.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorFlags.replay, "replay", "", "Replay the debug journal for the given session id")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyPreviewFlags(cfg)

	fmt.Println("configuration")
	fmt.Printf("  global config   %s %s\n", config.GlobalPath(), presence(config.GlobalPath()))
	fmt.Printf("  project config  %s %s\n", config.ProjectPath(), presence(config.ProjectPath()))
	fmt.Printf("  api_base        %s\n", cfg.APIBase)
	fmt.Printf("  api_key         %s\n", redact(cfg.APIKey))
	fmt.Printf("  project_id      %s\n", orDash(cfg.ProjectID))
	fmt.Printf("  systems         %v\n", cfg.Systems)
	fmt.Printf("  output_dir      %s\n", cfg.OutputDir)
	fmt.Printf("  data_dir        %s\n", cfg.DataDir)
	fmt.Printf("  debug           %v\n", cfg.Debug)
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Printf("config: FAIL (%v)\n", err)
		return nil
	}
	fmt.Println("config: OK")

	client := api.NewClient(cfg.APIBase, cfg.APIKey)
	start := time.Now()
	if err := client.Ping(cmd.Context()); err != nil {
		fmt.Printf("service: FAIL (%v)\n", err)
	} else {
		fmt.Printf("service: OK (%s, %dms)\n", cfg.APIBase, time.Since(start).Milliseconds())
	}

	if doctorFlags.replay != "" {
		return replayJournal(cmd, cfg, doctorFlags.replay)
	}
	return nil
}

func replayJournal(cmd *cobra.Command, cfg *config.Config, session string) error {
	jr, err := journal.Open(cmd.Context(), cfg.DataDir, session)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer jr.Close()

	fmt.Printf("\njournal %s\n", session)
	count := 0
	err = jr.Replay(cmd.Context(), func(ev journal.Event) {
		count++
		fmt.Printf("  %s  %-10s %-20s %s\n",
			ev.Timestamp.Format("15:04:05.000"), ev.Type, ev.Action, string(ev.Meta))
	})
	if err != nil {
		return fmt.Errorf("replaying journal: %w", err)
	}
	fmt.Printf("%d events\n", count)
	return nil
}

func presence(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "(found)"
	}
	return "(missing)"
}

func redact(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
