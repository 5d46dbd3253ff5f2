// Package notify implements the update notifiers: native dialogs, terminal
// output and plain log lines. New picks one from a configured kind.
package notify

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/nebula-desktop/nebula/internal/interactive"
	"github.com/nebula-desktop/nebula/internal/types"
	"github.com/nebula-desktop/nebula/internal/update"
)

// ErrNativeUnavailable is returned when native dialogs are not supported on
// this platform.
var ErrNativeUnavailable = errors.New("native dialogs are not available on this platform")

// Dialog titles and the control label. Shared by every notifier so the
// wording is the same in a dialog, a terminal and a log.
const (
	TitleUpdateRequired = "Update Required"
	TitleUpToDate       = "You're up to date!"
	TitleCheckFailed    = "Update Check Failed"
	ControlUpdateNow    = "Update Now"
)

// AppName is the product name shown to users.
const AppName = "Nebula"

// UpdateRequiredMessage is the body of the update prompt.
func UpdateRequiredMessage(n update.Notice) string {
	return fmt.Sprintf("Please install the latest version of %s to continue.\n\n%s → %s",
		AppName, n.CurrentVersion, n.AvailableVersion)
}

// UpToDateMessage is the body of the "up to date" notice.
func UpToDateMessage(version string) string {
	return fmt.Sprintf("%s %s is the latest version.", AppName, version)
}

// Options configures New.
type Options struct {
	Out    io.Writer   // terminal output, default os.Stdout
	In     io.Reader   // terminal input, default os.Stdin
	Logger *zap.Logger // used by the log notifier and for native progress
	// Interactive enables the acknowledgement prompt on the terminal.
	// New sets it when In is nil and stdin is a TTY.
	Interactive bool
}

// New returns the notifier for kind. Auto prefers native dialogs, then the
// terminal when Out is a TTY, then the log.
func New(kind types.NotifierKind, opts Options) (update.Notifier, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
		opts.Interactive = interactive.IsTerminal()
	}

	switch kind.Default() {
	case types.NotifierNative:
		return NewNative(opts.Logger)
	case types.NotifierTerminal:
		return newTerminalFromOptions(opts), nil
	case types.NotifierLog:
		return NewLog(opts.Logger), nil
	default:
		if n, err := NewNative(opts.Logger); err == nil {
			return n, nil
		}
		if interactive.IsTerminalWriter(opts.Out) {
			return newTerminalFromOptions(opts), nil
		}
		return NewLog(opts.Logger), nil
	}
}

func newTerminalFromOptions(opts Options) *Terminal {
	var p *interactive.Prompter
	if opts.Interactive {
		p = interactive.NewPrompterWithIO(opts.In, opts.Out)
	}
	return NewTerminal(opts.Out, p)
}
