package update

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrChecksumMismatch    = errors.New("checksum mismatch")
	ErrNoAsset             = errors.New("no release asset for this platform")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrDescriptorConsumed  = errors.New("update descriptor already consumed")
	ErrForeignDescriptor   = errors.New("update descriptor belongs to another source")
	ErrRateLimited         = errors.New("rate limited by GitHub API")
)

// Kind classifies where in a cycle an error happened.
type Kind string

const (
	// CheckFailure happens before the user commits. Recovered, never returned
	// by the controller.
	CheckFailure Kind = "check_failure"
	// TransferFailure is a failed or corrupt download.
	TransferFailure Kind = "transfer_failure"
	// InstallFailure means the artifact could not be applied.
	InstallFailure Kind = "install_failure"
	// RestartFailure means the new version is installed but the process could
	// not relaunch. The old binary keeps running.
	RestartFailure Kind = "restart_failure"
)

// Error is an error with its failure kind attached.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind, so callers can
// write errors.Is(err, &update.Error{Kind: update.TransferFailure}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Err == nil
}

// KindOf walks the error chain and returns the first failure kind found,
// or "" if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// withKind wraps err in an *Error unless it already carries a kind.
func withKind(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
