package config

import (
	"os"
	"testing"

	"github.com/nebula-desktop/nebula/internal/types"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		expected Format
	}{
		{"yaml extension", "nebula.yaml", "", FormatYAML},
		{"yml extension", "nebula.yml", "", FormatYAML},
		{"toml extension", "nebula.toml", "", FormatTOML},
		{"json extension", "nebula.json", "", FormatJSON},
		{"ini extension", "nebula.ini", "", FormatINI},
		{"json content", "nebula", `{"update": {}}`, FormatJSON},
		{"yaml content", "nebula", "update:\n  feed: github", FormatYAML},
		{"toml content", "nebula", "[update]\nfeed = \"github\"", FormatTOML},
		{"toml array", "nebula", "[update]\nverify_args = [\"--version\"]", FormatTOML},
		{"ini content", "nebula", "[update]\nfeed = github", FormatINI},
		{"ini with comments", "nebula", "; comment\n[log]\nlevel = debug", FormatINI},
		{"unknown content", "nebula", "just words", FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detectFormat(tt.path, []byte(tt.content))
			if got != tt.expected {
				t.Errorf("detectFormat() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "test_value")
	t.Setenv("EMPTY_VAR", "")
	os.Unsetenv("MISSING_VAR")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple var", "${TEST_VAR}", "test_value"},
		{"var with default", "${MISSING_VAR:-default_value}", "default_value"},
		{"existing var ignores default", "${TEST_VAR:-default_value}", "test_value"},
		{"empty var uses default", "${EMPTY_VAR:-default_value}", "default_value"},
		{"empty default", "${MISSING_VAR:-}", ""},
		{"no var", "plain text", "plain text"},
		{"mixed content", "prefix ${TEST_VAR} suffix", "prefix test_value suffix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tt.input)))
			if got != tt.expected {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.expected)
			}
		})
	}
}

// Each format describes the same settings; the result must not depend on
// the format chosen.
func TestParseFormats(t *testing.T) {
	t.Setenv("NEBULA_TEST_TOKEN", "ghp_secret")

	tests := []struct {
		name    string
		format  Format
		content string
	}{
		{
			name:   "yaml",
			format: FormatYAML,
			content: `
update:
  feed: manifest
  manifest_url: https://updates.example.com/nebula.json
  token: ${NEBULA_TEST_TOKEN}
  manual_prompt: informational
  block_startup: true
  check_timeout: 5s
  verify_args: ["--version", "--quiet"]
log:
  level: debug
ui:
  notifier: terminal
`,
		},
		{
			name:   "toml",
			format: FormatTOML,
			content: `
[update]
feed = "manifest"
manifest_url = "https://updates.example.com/nebula.json"
token = "${NEBULA_TEST_TOKEN}"
manual_prompt = "informational"
block_startup = true
check_timeout = "5s"
verify_args = ["--version", "--quiet"]

[log]
level = "debug"

[ui]
notifier = "terminal"
`,
		},
		{
			name:   "json",
			format: FormatJSON,
			content: `{
  "update": {
    "feed": "manifest",
    "manifest_url": "https://updates.example.com/nebula.json",
    "token": "${NEBULA_TEST_TOKEN}",
    "manual_prompt": "informational",
    "block_startup": true,
    "check_timeout": "5s",
    "verify_args": ["--version", "--quiet"]
  },
  "log": {"level": "debug"},
  "ui": {"notifier": "terminal"}
}`,
		},
		{
			name:   "ini",
			format: FormatINI,
			content: `
[update]
feed = manifest
manifest_url = https://updates.example.com/nebula.json
token = ${NEBULA_TEST_TOKEN}
manual_prompt = informational
block_startup = true
check_timeout = 5s
verify_args = --version,--quiet

[log]
level = debug

[ui]
notifier = terminal
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parse([]byte(tt.content), tt.format)
			if err != nil {
				t.Fatalf("parse() error = %v", err)
			}

			u := cfg.Update
			if u.Feed != types.FeedManifest {
				t.Errorf("Feed = %q, want manifest", u.Feed)
			}
			if u.ManifestURL != "https://updates.example.com/nebula.json" {
				t.Errorf("ManifestURL = %q", u.ManifestURL)
			}
			if u.Token != "ghp_secret" {
				t.Errorf("Token = %q, want expanded env value", u.Token)
			}
			if u.ManualPrompt != types.PromptInformational {
				t.Errorf("ManualPrompt = %q", u.ManualPrompt)
			}
			if u.StartupPrompt != types.PromptInformational {
				t.Errorf("StartupPrompt = %q, want default informational", u.StartupPrompt)
			}
			if !u.BlockStartup {
				t.Error("BlockStartup = false, want true")
			}
			if u.Timeout().Seconds() != 5 {
				t.Errorf("Timeout() = %v, want 5s", u.Timeout())
			}
			if len(u.VerifyArgs) != 2 || u.VerifyArgs[1] != "--quiet" {
				t.Errorf("VerifyArgs = %v", u.VerifyArgs)
			}
			if u.Owner != DefaultOwner {
				t.Errorf("Owner = %q, want default kept", u.Owner)
			}
			if cfg.Log.Level != "debug" {
				t.Errorf("Log.Level = %q", cfg.Log.Level)
			}
			if !cfg.Log.File {
				t.Error("Log.File default lost")
			}
			if cfg.UI.Notifier != types.NotifierTerminal {
				t.Errorf("UI.Notifier = %q", cfg.UI.Notifier)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		content string
	}{
		{"bad yaml", FormatYAML, "update: [unclosed"},
		{"bad toml", FormatTOML, "[update\nfeed ="},
		{"bad json", FormatJSON, `{"update": `},
		{"unknown format", FormatUnknown, "anything"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parse([]byte(tt.content), tt.format); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}
