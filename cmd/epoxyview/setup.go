package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skisplace/epoxyview/internal/config"
)

var setupFlags struct {
	project bool
	force   bool
	apiKey  string
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create an epoxyview configuration file",
	Long: `Create an epoxyview configuration file with sensible defaults.

By default, creates a global config at ~/.config/epoxyview/epoxyview.yml.
Use --project to create a project-local config in the current directory.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupFlags.project, "project", "p", false, "Create config in current directory instead of global location")
	setupCmd.Flags().BoolVarP(&setupFlags.force, "force", "f", false, "Overwrite existing config file")
	setupCmd.Flags().StringVar(&setupFlags.apiKey, "api-key", "", "Preview service API key to store")
}

func runSetup(cmd *cobra.Command, args []string) error {
	targetPath := config.GlobalPath()
	if setupFlags.project {
		targetPath = config.ProjectPath()
	}

	if !setupFlags.force && fileExists(targetPath) {
		return fmt.Errorf("config file already exists at %s\n\nUse --force to overwrite", targetPath)
	}

	cfg := &config.Config{
		APIKey:    setupFlags.apiKey,
		APIBase:   config.DefaultAPIBase,
		DataDir:   ".epoxyview",
		OutputDir: ".",
		LogLevel:  "info",
	}

	var err error
	if setupFlags.project {
		err = config.WriteProject(cfg)
	} else {
		err = config.WriteGlobal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Config written to: %s\n\n", targetPath)
	if setupFlags.apiKey == "" {
		fmt.Println("Add your api_key to the file, then run 'epoxyview preview'.")
	} else {
		fmt.Println("Run 'epoxyview preview' to get started.")
	}
	return nil
}

// fileExists checks if a file exists (helper for setup command).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
