package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nebula-desktop/nebula/internal/types"
)

// isolate points every lookup location at an empty temp home.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("NEBULA_CONFIG", "")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFind(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "custom.yaml")
		writeFile(t, path, "update: {}")

		got, err := Find(path)
		if err != nil || got != path {
			t.Errorf("Find() = %q, %v", got, err)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		isolate(t)
		if _, err := Find(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing explicit path")
		}
	})

	t.Run("env var", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "env.toml")
		writeFile(t, path, "")
		t.Setenv("NEBULA_CONFIG", path)

		got, err := Find("")
		if err != nil || got != path {
			t.Errorf("Find() = %q, %v", got, err)
		}
	})

	t.Run("xdg before home", func(t *testing.T) {
		home := isolate(t)
		xdg := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", xdg)
		writeFile(t, filepath.Join(home, ".nebula", "nebula.yaml"), "")
		want := filepath.Join(xdg, "nebula", "nebula.ini")
		writeFile(t, want, "")

		got, err := Find("")
		if err != nil || got != want {
			t.Errorf("Find() = %q, %v, want %q", got, err, want)
		}
	})

	t.Run("dot directory in home", func(t *testing.T) {
		home := isolate(t)
		want := filepath.Join(home, ".nebula", "nebula")
		writeFile(t, want, "")

		got, err := Find("")
		if err != nil || got != want {
			t.Errorf("Find() = %q, %v, want %q", got, err, want)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		isolate(t)
		if _, err := Find(""); !errors.Is(err, ErrNoConfig) {
			t.Errorf("Find() error = %v, want ErrNoConfig", err)
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		isolate(t)
		cfg, path, err := LoadOrDefault("")
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if path != "" {
			t.Errorf("path = %q, want empty", path)
		}
		if cfg.Update.Feed != types.FeedGitHub || cfg.Update.ManualPrompt != types.PromptMandatory {
			t.Errorf("unexpected defaults: %+v", cfg.Update)
		}
	})

	t.Run("valid file", func(t *testing.T) {
		home := isolate(t)
		want := filepath.Join(home, ".config", "nebula", "nebula.yaml")
		writeFile(t, want, "update:\n  repo: nebula-nightly\n  block_startup: true\n")

		cfg, path, err := LoadOrDefault("")
		if err != nil {
			t.Fatalf("LoadOrDefault() error = %v", err)
		}
		if path != want {
			t.Errorf("path = %q, want %q", path, want)
		}
		if cfg.Update.Repo != "nebula-nightly" || !cfg.Update.BlockStartup {
			t.Errorf("unexpected update config: %+v", cfg.Update)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		home := isolate(t)
		writeFile(t, filepath.Join(home, ".nebula", "nebula.yaml"), "update:\n  feed: carrier-pigeon\n")

		_, _, err := LoadOrDefault("")
		if err == nil || !strings.Contains(err.Error(), "update.feed") {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("undetectable format", func(t *testing.T) {
		isolate(t)
		path := filepath.Join(t.TempDir(), "nebula")
		writeFile(t, path, "just words")

		if _, err := Load(path); err == nil {
			t.Error("expected format detection error")
		}
	})
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"10s", 10 * time.Second},
		{"2m", 2 * time.Minute},
		{"", DefaultCheckTimeout},
		{"soon", DefaultCheckTimeout},
		{"0s", DefaultCheckTimeout},
	}
	for _, tt := range tests {
		if got := (UpdateConfig{CheckTimeout: tt.value}).Timeout(); got != tt.want {
			t.Errorf("Timeout(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestDirectories(t *testing.T) {
	home := isolate(t)

	t.Setenv("XDG_STATE_HOME", "")
	if got, want := StateDir(), filepath.Join(home, ".local", "state", "nebula"); got != want {
		t.Errorf("StateDir() = %q, want %q", got, want)
	}
	t.Setenv("XDG_STATE_HOME", "/var/state")
	if got := StateDir(); got != filepath.Join("/var/state", "nebula") {
		t.Errorf("StateDir() = %q", got)
	}

	t.Setenv("XDG_CACHE_HOME", "/var/cache")
	if got := DefaultDownloadDir(); got != filepath.Join("/var/cache", "nebula", "updates") {
		t.Errorf("DefaultDownloadDir() = %q", got)
	}

	u := UpdateConfig{DownloadDir: "/opt/nebula/dl"}
	if u.ResolvedDownloadDir() != "/opt/nebula/dl" {
		t.Error("explicit download dir must win")
	}
	l := LogConfig{}
	if l.ResolvedDir() != StateDir() {
		t.Error("empty log dir must default to the state dir")
	}
}
