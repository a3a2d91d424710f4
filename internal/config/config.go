// Package config holds user-tunable settings loaded from an optional YAML
// file and merged over code defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/csvx/internal/engine"
)

// Config is the root of the YAML config file.
type Config struct {
	UI     UIConfig     `yaml:"ui"`
	Engine EngineConfig `yaml:"engine"`
	Output OutputConfig `yaml:"output"`
}

// UIConfig controls the interactive TUI.
type UIConfig struct {
	Theme  string `yaml:"theme"`  // dark|light
	Keymap string `yaml:"keymap"` // vim|function
}

// EngineConfig controls table-engine windowing defaults.
type EngineConfig struct {
	PageSize  int    `yaml:"page_size"`
	BatchSize int    `yaml:"batch_size"`
	Window    string `yaml:"window"` // paged|scroll
}

// OutputConfig controls non-interactive output defaults.
type OutputConfig struct {
	Format  string `yaml:"format"`
	NoColor bool   `yaml:"no_color"`
}

const (
	WindowPaged  = "paged"
	WindowScroll = "scroll"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		UI: UIConfig{
			Theme:  "dark",
			Keymap: "vim",
		},
		Engine: EngineConfig{
			PageSize:  engine.DefaultPageSize,
			BatchSize: engine.DefaultBatchSize,
			Window:    WindowScroll,
		},
		Output: OutputConfig{
			Format: "auto",
		},
	}
}

// DefaultPath returns the conventional config file location, or "" when the
// user config dir cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "csvx", "config.yaml")
}

// Load merges the YAML file at path over the defaults. An empty path falls
// back to DefaultPath; a missing file at the default location is not an
// error, but an explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	// Unmarshalling over the pre-filled struct keeps defaults for any key
	// the file does not mention.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.Engine.Window {
	case WindowPaged, WindowScroll:
	default:
		return fmt.Errorf("engine.window must be %q or %q, got %q", WindowPaged, WindowScroll, c.Engine.Window)
	}
	if c.Engine.PageSize < 1 {
		return fmt.Errorf("engine.page_size must be positive, got %d", c.Engine.PageSize)
	}
	if c.Engine.BatchSize < 1 {
		return fmt.Errorf("engine.batch_size must be positive, got %d", c.Engine.BatchSize)
	}
	switch c.UI.Keymap {
	case "vim", "function":
	default:
		return fmt.Errorf("ui.keymap must be vim or function, got %q", c.UI.Keymap)
	}
	return nil
}

// WindowMode maps the configured window name onto the engine mode.
func (c EngineConfig) WindowMode() engine.WindowMode {
	if c.Window == WindowPaged {
		return engine.Paged
	}
	return engine.Reveal
}
