package update

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/nebula-desktop/nebula/internal/types"
)

// Policy is the per-invocation input to Controller.RunCheck.
type Policy struct {
	Suppressed       bool             // skip flag or debug build: no check at all
	AnnounceUpToDate bool             // tell the user when nothing newer exists
	Prompt           types.PromptMode // how an available update is presented
	Trigger          types.Trigger    // what started the cycle, for logs
}

// Descriptor identifies one available update. It is produced by
// Source.Check, lives for a single cycle, and can be consumed once.
type Descriptor struct {
	CurrentVersion   string
	AvailableVersion string
	ReleaseNotes     string
	PublishedAt      time.Time

	handle   *Release
	owner    Source
	consumed atomic.Bool
}

// NewDescriptor creates a descriptor bound to the source that produced it.
func NewDescriptor(owner Source, current, available string, rel *Release) *Descriptor {
	d := &Descriptor{
		CurrentVersion:   current,
		AvailableVersion: available,
		handle:           rel,
		owner:            owner,
	}
	if rel != nil {
		d.ReleaseNotes = rel.Notes
		d.PublishedAt = rel.PublishedAt
	}
	return d
}

// Handle returns the release the descriptor points at.
func (d *Descriptor) Handle() *Release {
	return d.handle
}

// consume marks the descriptor as used by src. It fails if the descriptor
// was already consumed or was produced by a different source.
func (d *Descriptor) consume(src Source) error {
	if d.owner != src {
		return ErrForeignDescriptor
	}
	if !d.consumed.CompareAndSwap(false, true) {
		return ErrDescriptorConsumed
	}
	return nil
}

// OutcomeKind tags a CheckOutcome.
type OutcomeKind int

const (
	// NoUpdate means the running version is the newest one.
	NoUpdate OutcomeKind = iota
	// UpdateAvailable means Descriptor is set.
	UpdateAvailable
	// CheckFailed means Err is set. Always recovered by the controller.
	CheckFailed
)

// String returns the string representation of an OutcomeKind.
func (k OutcomeKind) String() string {
	switch k {
	case NoUpdate:
		return "no-update"
	case UpdateAvailable:
		return "update-available"
	case CheckFailed:
		return "check-failed"
	default:
		return "unknown"
	}
}

// CheckOutcome is the result of asking a Source whether a newer version exists.
type CheckOutcome struct {
	Kind       OutcomeKind
	Version    string      // current version, always set when known
	Descriptor *Descriptor // set for UpdateAvailable
	Err        error       // set for CheckFailed
}

// Up builds a NoUpdate outcome.
func Up(version string) CheckOutcome {
	return CheckOutcome{Kind: NoUpdate, Version: version}
}

// Available builds an UpdateAvailable outcome.
func Available(d *Descriptor) CheckOutcome {
	return CheckOutcome{Kind: UpdateAvailable, Version: d.CurrentVersion, Descriptor: d}
}

// Failed builds a CheckFailed outcome.
func Failed(err error) CheckOutcome {
	return CheckOutcome{Kind: CheckFailed, Err: &Error{Kind: CheckFailure, Op: "check", Err: err}}
}

// EventKind tags a TransferEvent.
type EventKind int

const (
	// EventProgress carries a DownloadProgress.
	EventProgress EventKind = iota
	// EventDownloaded is sent once, after the artifact is complete and
	// verified and before it is installed.
	EventDownloaded
)

// TransferEvent is one message on the download stream.
type TransferEvent struct {
	Kind     EventKind
	Progress DownloadProgress
}

// Source is the update distribution capability.
type Source interface {
	// Check reports whether a newer version exists. It never panics on
	// network failure; failures come back as a CheckFailed outcome.
	Check(ctx context.Context) CheckOutcome

	// DownloadAndInstall fetches and applies the update described by d,
	// streaming TransferEvents to events. The caller owns events and closes
	// it after DownloadAndInstall returns; implementations must not send
	// after returning.
	DownloadAndInstall(ctx context.Context, d *Descriptor, events chan<- TransferEvent) error
}

// Notice is what the user is shown when an update is about to be installed.
type Notice struct {
	CurrentVersion   string
	AvailableVersion string
	ReleaseNotes     string
}

// Notifier presents update decisions to the user.
type Notifier interface {
	NotifyUpToDate(version string)
	// NotifyUpdateRequired blocks until the prompt is closed.
	NotifyUpdateRequired(n Notice) (acknowledged bool)
	NotifyError(message string)
}

// Reporter renders progress of a running cycle. Notifiers that can show
// progress implement it as well; the controller checks with a type assertion.
type Reporter interface {
	Checking()
	Progress(p DownloadProgress)
	Installing()
}

// Restarter relaunches the running application. On success Restart does
// not return.
type Restarter interface {
	Restart() error
}

// Release is the metadata a Feed returns for the newest published version.
type Release struct {
	Version     string
	Notes       string
	PublishedAt time.Time
	AssetName   string
	AssetURL    string
	ChecksumURL string // checksums.txt style listing
	SHA256      string // inline digest, preferred over ChecksumURL
	Size        int64
}

// Feed resolves the newest published release for this platform.
type Feed interface {
	Latest(ctx context.Context) (*Release, error)
}

// Platform describes the current system platform
type Platform struct {
	OS   string // Operating system (darwin, linux, windows)
	Arch string // Architecture (amd64, arm64)
}

// Replacer swaps the installed binary for a new one, with rollback.
type Replacer interface {
	Replace(newBinary string) error
	Rollback() error
}
