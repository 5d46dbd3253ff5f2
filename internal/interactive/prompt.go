// Package interactive provides terminal prompts for update notices.
package interactive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Response represents how a prompt was closed.
type Response int

const (
	ResponseAcknowledged Response = iota // User pressed Enter
	ResponseClosed                       // Input ended before an answer
)

// String returns the string representation of the Response.
func (r Response) String() string {
	switch r {
	case ResponseAcknowledged:
		return "acknowledged"
	case ResponseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Prompter shows acknowledgement prompts on a terminal. It is safe for
// concurrent use; prompts are serialized.
type Prompter struct {
	mu      sync.Mutex
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
}

// NewPrompter creates a prompter with stdin/stdout.
func NewPrompter() *Prompter {
	return NewPrompterWithIO(os.Stdin, os.Stdout)
}

// NewPrompterWithIO creates a prompter with custom input/output (for testing).
func NewPrompterWithIO(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:      in,
		out:     out,
		scanner: bufio.NewScanner(in),
	}
}

// IsTerminal checks if stdin is a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsTerminalWriter reports whether w is a terminal.
func IsTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of w, or fallback when w is not a
// terminal.
func TerminalWidth(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// Acknowledge prints message followed by a single control and blocks until
// the user presses Enter. Whatever is typed is ignored.
func (p *Prompter) Acknowledge(message, control string) Response {
	p.mu.Lock()
	defer p.mu.Unlock()

	if message != "" {
		_, _ = fmt.Fprintln(p.out, message)
	}
	_, _ = fmt.Fprintf(p.out, "[%s] ", control)

	if !p.scanner.Scan() {
		_, _ = fmt.Fprintln(p.out)
		return ResponseClosed
	}
	return ResponseAcknowledged
}
