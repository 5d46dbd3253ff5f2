// Package config handles nebula config discovery, parsing and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nebula-desktop/nebula/internal/types"
)

// ErrNoConfig is returned by Find when no config file exists in any of the
// standard locations.
var ErrNoConfig = errors.New("no nebula config found in standard locations")

// Config is the parsed configuration file.
type Config struct {
	Update UpdateConfig `yaml:"update" toml:"update" json:"update"`
	Log    LogConfig    `yaml:"log" toml:"log" json:"log"`
	UI     UIConfig     `yaml:"ui" toml:"ui" json:"ui"`
}

// UpdateConfig controls where updates come from and how they are presented.
type UpdateConfig struct {
	Feed          types.FeedKind   `yaml:"feed" toml:"feed" json:"feed" ini:"feed"`
	Owner         string           `yaml:"owner" toml:"owner" json:"owner" ini:"owner"`
	Repo          string           `yaml:"repo" toml:"repo" json:"repo" ini:"repo"`
	Token         string           `yaml:"token,omitempty" toml:"token,omitempty" json:"token,omitempty" ini:"token"`
	ManifestURL   string           `yaml:"manifest_url,omitempty" toml:"manifest_url,omitempty" json:"manifest_url,omitempty" ini:"manifest_url"`
	StartupPrompt types.PromptMode `yaml:"startup_prompt" toml:"startup_prompt" json:"startup_prompt" ini:"startup_prompt"`
	ManualPrompt  types.PromptMode `yaml:"manual_prompt" toml:"manual_prompt" json:"manual_prompt" ini:"manual_prompt"`
	BlockStartup  bool             `yaml:"block_startup" toml:"block_startup" json:"block_startup" ini:"block_startup"`
	DownloadDir   string           `yaml:"download_dir,omitempty" toml:"download_dir,omitempty" json:"download_dir,omitempty" ini:"download_dir"`
	CheckTimeout  string           `yaml:"check_timeout" toml:"check_timeout" json:"check_timeout" ini:"check_timeout"`
	VerifyArgs    []string         `yaml:"verify_args" toml:"verify_args" json:"verify_args" ini:"verify_args" delim:","`
}

// Timeout returns CheckTimeout as a duration, falling back to the default
// when it is empty or invalid. Validate reports invalid values.
func (u UpdateConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(u.CheckTimeout)
	if err != nil || d <= 0 {
		return DefaultCheckTimeout
	}
	return d
}

// ResolvedDownloadDir returns DownloadDir or the per-user cache default.
func (u UpdateConfig) ResolvedDownloadDir() string {
	if u.DownloadDir != "" {
		return u.DownloadDir
	}
	return DefaultDownloadDir()
}

// LogConfig controls the log targets.
type LogConfig struct {
	Level string `yaml:"level" toml:"level" json:"level" ini:"level"`
	Dir   string `yaml:"dir,omitempty" toml:"dir,omitempty" json:"dir,omitempty" ini:"dir"`
	File  bool   `yaml:"file" toml:"file" json:"file" ini:"file"`
}

// ResolvedDir returns Dir or the per-user state default.
func (l LogConfig) ResolvedDir() string {
	if l.Dir != "" {
		return l.Dir
	}
	return StateDir()
}

// UIConfig selects how the user is notified.
type UIConfig struct {
	Notifier types.NotifierKind `yaml:"notifier" toml:"notifier" json:"notifier" ini:"notifier"`
}

// Defaults.
const (
	DefaultOwner        = "nebula-desktop"
	DefaultRepo         = "nebula"
	DefaultCheckTimeout = 30 * time.Second
	DefaultLogLevel     = "info"
)

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Update: UpdateConfig{
			Feed:          types.FeedGitHub,
			Owner:         DefaultOwner,
			Repo:          DefaultRepo,
			StartupPrompt: types.PromptInformational,
			ManualPrompt:  types.PromptMandatory,
			CheckTimeout:  DefaultCheckTimeout.String(),
			VerifyArgs:    []string{"--version"},
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
			File:  true,
		},
		UI: UIConfig{
			Notifier: types.NotifierAuto,
		},
	}
}

// configNames are tried in each search directory, in order.
var configNames = []string{
	"nebula.yaml",
	"nebula.yml",
	"nebula.toml",
	"nebula.json",
	"nebula.ini",
	"nebula",
	"config.yaml",
	"config.toml",
}

// Find searches for a config file. An explicit path must exist. Otherwise
// $NEBULA_CONFIG is used, then $XDG_CONFIG_HOME/nebula, ~/.config/nebula
// and ~/.nebula are searched. ErrNoConfig means nothing was found.
func Find(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("specified config not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	if envPath := os.Getenv("NEBULA_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, dir := range searchDirs() {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
	}

	return "", ErrNoConfig
}

func searchDirs() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "nebula"))
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dirs
	}
	return append(dirs,
		filepath.Join(home, ".config", "nebula"),
		filepath.Join(home, ".nebula"),
	)
}

// Load reads, parses and validates the config at path. Keys missing from
// the file keep their defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	format := detectFormat(path, content)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unable to detect file format for %s", path)
	}

	cfg, err := parse(content, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault finds and loads the config, returning Default when no file
// exists. The returned path is empty in that case.
func LoadOrDefault(explicitPath string) (*Config, string, error) {
	path, err := Find(explicitPath)
	if errors.Is(err, ErrNoConfig) {
		return Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// StateDir is where the lock file and logs live: $XDG_STATE_HOME/nebula,
// else ~/.local/state/nebula.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "nebula")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "state", "nebula")
	}
	return filepath.Join(os.TempDir(), "nebula")
}

// DefaultDownloadDir is $XDG_CACHE_HOME/nebula/updates or the platform
// cache directory.
func DefaultDownloadDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "nebula", "updates")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "nebula", "updates")
	}
	return filepath.Join(os.TempDir(), "nebula", "updates")
}
