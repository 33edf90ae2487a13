package hooks

// Config is the top-level configuration loaded from .epoxyview.hooks.yml.
type Config struct {
	Version int         `yaml:"version"`
	Hooks   HooksConfig `yaml:"hooks"`
}

// HooksConfig maps wizard events to user commands. These are the embed-side
// callbacks of the widget: fired after a render completes, after a preview
// image is saved, and when an error overlay appears.
type HooksConfig struct {
	OnRender *HookConfig `yaml:"on_render"`
	OnSave   *HookConfig `yaml:"on_save"`
	OnError  *HookConfig `yaml:"on_error"`
}

// HookConfig defines a single hook's configuration.
type HookConfig struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout"` // seconds, default 30
}

// DefaultTimeout is the default timeout for hook execution in seconds.
const DefaultTimeout = 30
