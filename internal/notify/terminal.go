package notify

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/nebula-desktop/nebula/internal/interactive"
	"github.com/nebula-desktop/nebula/internal/update"
)

const (
	defaultWidth = 80
	barWidth     = 40
	// pipedStep is how often progress is printed when out is not a TTY.
	pipedStep = 10
)

// Terminal renders notices on a terminal. It also implements
// update.Reporter, drawing a progress bar while the download runs.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	prompter *interactive.Prompter // nil: never wait for the user
	tty      bool
	width    int
	bar      progress.Model

	title lipgloss.Style
	err   lipgloss.Style
	box   lipgloss.Style
	muted lipgloss.Style

	progressActive bool
	lastStep       int
}

// NewTerminal returns a terminal notifier writing to out. When prompter is
// nil, update prompts are printed but not waited on.
func NewTerminal(out io.Writer, prompter *interactive.Prompter) *Terminal {
	r := lipgloss.NewRenderer(out)
	width := interactive.TerminalWidth(out, defaultWidth)
	return &Terminal{
		out:      out,
		prompter: prompter,
		tty:      interactive.IsTerminalWriter(out),
		width:    width,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		err:      r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		box:      r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		muted:    r.NewStyle().Foreground(lipgloss.Color("8")),
		lastStep: -1,
	}
}

func (t *Terminal) NotifyUpToDate(version string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endProgressLocked()
	t.printf("%s\n%s\n", t.title.Render(TitleUpToDate), UpToDateMessage(version))
}

// NotifyUpdateRequired prints the notice and release notes, then waits for
// the user to press Enter on the single control.
func (t *Terminal) NotifyUpdateRequired(n update.Notice) bool {
	t.mu.Lock()
	t.endProgressLocked()
	body := t.title.Render(TitleUpdateRequired) + "\n\n" + UpdateRequiredMessage(n)
	t.printf("%s\n", t.box.Render(body))
	if notes := strings.TrimSpace(n.ReleaseNotes); notes != "" {
		t.printf("%s\n", t.renderNotes(notes))
	}
	prompter := t.prompter
	if prompter == nil {
		t.printf("%s\n", t.muted.Render("Installing automatically."))
	}
	t.mu.Unlock()

	if prompter == nil {
		return false
	}
	return prompter.Acknowledge("", ControlUpdateNow) == interactive.ResponseAcknowledged
}

func (t *Terminal) NotifyError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endProgressLocked()
	t.printf("%s\n%s\n", t.err.Render(TitleCheckFailed), message)
}

func (t *Terminal) Checking() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.printf("%s\n", t.muted.Render("Checking for updates..."))
}

// Progress redraws the progress line in place on a TTY. Piped output gets a
// new line every pipedStep percent, or every MiB when the total is unknown.
func (t *Terminal) Progress(p update.DownloadProgress) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := "Downloading... " + p.String()
	if t.tty {
		if pct, ok := p.Percent(); ok {
			line = t.bar.ViewAs(pct/100) + " " + line
		}
		t.printf("\r\033[K%s", line)
		t.progressActive = true
		return
	}

	step := int(p.BytesReceived >> 20)
	if pct, ok := p.Percent(); ok {
		step = int(pct) / pipedStep
	}
	if step == t.lastStep {
		return
	}
	t.lastStep = step
	t.printf("%s\n", line)
}

func (t *Terminal) Installing() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.endProgressLocked()
	t.printf("%s\n", t.title.Render("Installing update..."))
}

func (t *Terminal) renderNotes(notes string) string {
	style := "notty"
	if t.tty {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(t.width),
	)
	if err != nil {
		return notes
	}
	out, err := r.Render(notes)
	if err != nil {
		return notes
	}
	return strings.TrimRight(out, "\n")
}

func (t *Terminal) endProgressLocked() {
	if t.progressActive {
		t.printf("\n")
		t.progressActive = false
	}
	t.lastStep = -1
}

func (t *Terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format, args...)
}
