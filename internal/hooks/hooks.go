// Package hooks runs user-configured shell commands on wizard events. This
// is the terminal rendition of the widget's embed callbacks: a site embedding
// the web widget registers JS handlers, a terminal user drops a
// .epoxyview.hooks.yml next to their project.
package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skisplace/epoxyview/internal/logger"
)

// ConfigFileName is the name of the hooks configuration file.
const ConfigFileName = ".epoxyview.hooks.yml"

// LoadConfig loads the hooks configuration from the working directory.
// Returns nil without error if the file doesn't exist: hooks are optional.
func LoadConfig(workDir string) (*Config, error) {
	configPath := filepath.Join(workDir, ConfigFileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading hooks config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing hooks config: %w", err)
	}

	logger.Debug("loaded hooks config from %s (version %d)", configPath, cfg.Version)
	return &cfg, nil
}

// Variables holds the placeholders expanded in hook commands.
type Variables struct {
	ResultURL string // rendered image URL (on_render, on_save)
	Style     string // selected style name
	Path      string // saved file path (on_save)
	Error     string // error message (on_error)
}

// Execute runs one hook command with expanded variables. Hook failures are
// reported in the returned output, never as an error: a broken user command
// must not break the preview flow. Only context cancellation is propagated.
func Execute(ctx context.Context, hook *HookConfig, workDir string, vars Variables) (string, error) {
	if hook == nil || hook.Command == "" {
		return "", nil
	}

	command := expandVariables(hook.Command, vars)
	logger.Debug("executing hook: %s", command)

	timeout := hook.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if execCtx.Err() == context.DeadlineExceeded {
		logger.Warn("hook timed out after %ds: %s", timeout, command)
		return fmt.Sprintf("[hook timed out after %ds]", timeout), nil
	}
	if err != nil {
		logger.Warn("hook failed: %v", err)
		output := stdout.String()
		if stderr.Len() > 0 {
			output += "\n[stderr]\n" + stderr.String()
		}
		return fmt.Sprintf("[hook failed: %v]\n%s", err, output), nil
	}

	return stdout.String(), nil
}

// expandVariables replaces {{variable}} placeholders in the command string.
func expandVariables(command string, vars Variables) string {
	replacements := map[string]string{
		"{{result_url}}": vars.ResultURL,
		"{{style}}":      vars.Style,
		"{{path}}":       vars.Path,
		"{{error}}":      vars.Error,
	}

	result := command
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}
