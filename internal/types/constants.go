// Package types provides type-safe constants for nebula's configuration and
// update policy.
//
// Every enumerated setting that can appear in the config file or on the
// command line is declared here with a Validate method, so config validation
// and flag parsing share one definition of what is allowed.
package types

import (
	"fmt"
	"strings"
)

// PromptMode controls how an available update is presented before install.
type PromptMode string

const (
	// PromptMandatory shows a blocking prompt with a single acknowledgement
	// control. The install proceeds regardless of how the prompt is closed.
	PromptMandatory PromptMode = "mandatory"
	// PromptInformational shows no prompt; the update is logged and installed.
	PromptInformational PromptMode = "informational"
)

// AllPromptModes returns all valid prompt modes.
func AllPromptModes() []PromptMode {
	return []PromptMode{PromptMandatory, PromptInformational}
}

// Validate checks if the PromptMode is a valid value.
func (m PromptMode) Validate() error {
	switch m {
	case PromptMandatory, PromptInformational:
		return nil
	case "":
		return fmt.Errorf("prompt mode is required")
	default:
		return fmt.Errorf("invalid prompt mode '%s' (must be mandatory or informational)", m)
	}
}

// String returns the string representation of the PromptMode.
func (m PromptMode) String() string {
	return string(m)
}

// IsMandatory returns true if the mode shows a blocking prompt.
func (m PromptMode) IsMandatory() bool {
	return m == PromptMandatory
}

// ParsePromptMode parses a string into a PromptMode.
func ParsePromptMode(s string) (PromptMode, error) {
	m := PromptMode(strings.ToLower(strings.TrimSpace(s)))
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

// BuildMode is the build profile stamped into the binary at link time.
type BuildMode string

const (
	// BuildDebug is a development build. Update checks are suppressed.
	BuildDebug BuildMode = "debug"
	// BuildRelease is a published build.
	BuildRelease BuildMode = "release"
)

// Validate checks if the BuildMode is a valid value.
func (b BuildMode) Validate() error {
	switch b {
	case BuildDebug, BuildRelease:
		return nil
	default:
		return fmt.Errorf("invalid build mode '%s' (must be debug or release)", b)
	}
}

// String returns the string representation of the BuildMode.
func (b BuildMode) String() string {
	return string(b)
}

// IsDebug returns true for debug builds.
func (b BuildMode) IsDebug() bool {
	return b == BuildDebug
}

// ParseBuildMode parses a link-time build mode. Anything that is not
// recognisably "release" is treated as a debug build.
func ParseBuildMode(s string) BuildMode {
	if strings.EqualFold(strings.TrimSpace(s), string(BuildRelease)) {
		return BuildRelease
	}
	return BuildDebug
}

// Trigger identifies what started an update cycle.
type Trigger string

const (
	// TriggerStartup is the silent probe run when the application starts.
	TriggerStartup Trigger = "startup"
	// TriggerManual is a user-initiated "Check for Updates..." action.
	TriggerManual Trigger = "manual"
)

// String returns the string representation of the Trigger.
func (t Trigger) String() string {
	return string(t)
}

// IsManual returns true if the user asked for the check.
func (t Trigger) IsManual() bool {
	return t == TriggerManual
}

// FeedKind selects where release metadata comes from.
type FeedKind string

const (
	// FeedGitHub reads the latest GitHub release of the configured repository.
	FeedGitHub FeedKind = "github"
	// FeedManifest reads a static JSON manifest from a URL.
	FeedManifest FeedKind = "manifest"
)

// AllFeedKinds returns all valid feed kinds.
func AllFeedKinds() []FeedKind {
	return []FeedKind{FeedGitHub, FeedManifest}
}

// Validate checks if the FeedKind is a valid value.
func (f FeedKind) Validate() error {
	switch f {
	case FeedGitHub, FeedManifest:
		return nil
	case "":
		return fmt.Errorf("feed is required")
	default:
		return fmt.Errorf("invalid feed '%s' (must be github or manifest)", f)
	}
}

// String returns the string representation of the FeedKind.
func (f FeedKind) String() string {
	return string(f)
}

// RequiresURL returns true if the feed needs an explicit manifest URL.
func (f FeedKind) RequiresURL() bool {
	return f == FeedManifest
}

// ParseFeedKind parses a string into a FeedKind.
func ParseFeedKind(s string) (FeedKind, error) {
	f := FeedKind(strings.ToLower(strings.TrimSpace(s)))
	if err := f.Validate(); err != nil {
		return "", err
	}
	return f, nil
}

// NotifierKind selects how the user is told about updates.
type NotifierKind string

const (
	// NotifierAuto picks native dialogs when available, then the terminal,
	// then plain log lines.
	NotifierAuto NotifierKind = "auto"
	// NotifierNative uses OS dialogs.
	NotifierNative NotifierKind = "native"
	// NotifierTerminal writes styled output to the terminal.
	NotifierTerminal NotifierKind = "terminal"
	// NotifierLog only writes log records.
	NotifierLog NotifierKind = "log"
)

// AllNotifierKinds returns all valid notifier kinds.
func AllNotifierKinds() []NotifierKind {
	return []NotifierKind{NotifierAuto, NotifierNative, NotifierTerminal, NotifierLog}
}

// Validate checks if the NotifierKind is a valid value.
// Empty is accepted and means auto.
func (n NotifierKind) Validate() error {
	switch n {
	case NotifierAuto, NotifierNative, NotifierTerminal, NotifierLog, "":
		return nil
	default:
		return fmt.Errorf("invalid notifier '%s' (must be auto, native, terminal, or log)", n)
	}
}

// String returns the string representation of the NotifierKind.
func (n NotifierKind) String() string {
	return string(n)
}

// Default returns auto if empty, otherwise the current kind.
func (n NotifierKind) Default() NotifierKind {
	if n == "" {
		return NotifierAuto
	}
	return n
}

// ParseNotifierKind parses a string into a NotifierKind.
func ParseNotifierKind(s string) (NotifierKind, error) {
	n := NotifierKind(strings.ToLower(strings.TrimSpace(s)))
	if err := n.Validate(); err != nil {
		return "", err
	}
	return n.Default(), nil
}
