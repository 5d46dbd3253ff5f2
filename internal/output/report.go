package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/nebula-desktop/nebula/internal/update"
)

// CycleReport is the printable form of one update cycle.
type CycleReport struct {
	Continue         bool           `json:"continue" yaml:"continue"`
	Outcome          update.Outcome `json:"outcome" yaml:"outcome"`
	CurrentVersion   string         `json:"current_version,omitempty" yaml:"current_version,omitempty"`
	AvailableVersion string         `json:"available_version,omitempty" yaml:"available_version,omitempty"`
	CycleID          string         `json:"cycle_id" yaml:"cycle_id"`
	ErrorKind        update.Kind    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error            string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCycleReport combines a RunCheck result and error.
func NewCycleReport(res *update.Result, err error) CycleReport {
	var r CycleReport
	if res != nil {
		r = CycleReport{
			Continue:         res.Continue,
			Outcome:          res.Outcome,
			CurrentVersion:   res.CurrentVersion,
			AvailableVersion: res.AvailableVersion,
			CycleID:          res.CycleID,
		}
	}
	if err != nil {
		r.Error = err.Error()
		r.ErrorKind = update.KindOf(err)
	}
	return r
}

func (r CycleReport) String() string {
	var s string
	switch r.Outcome {
	case update.OutcomeSuppressed:
		s = "Update check skipped (--skip-update flag or debug build)"
	case update.OutcomeBusy:
		s = "An update check is already running"
	case update.OutcomeNoUpdate:
		s = fmt.Sprintf("Nebula %s is the latest version", r.CurrentVersion)
	case update.OutcomeCheckFailed:
		s = "Update check failed, continuing with the installed version"
	case update.OutcomeCancelled:
		s = "Update cancelled before download"
	case update.OutcomeFailed:
		s = fmt.Sprintf("Update to %s failed", r.AvailableVersion)
	case update.OutcomeUpdated:
		s = fmt.Sprintf("Updated %s → %s", r.CurrentVersion, r.AvailableVersion)
	default:
		s = string(r.Outcome)
	}
	if r.Error != "" {
		s += ": " + r.Error
	}
	return s
}

// CheckReport is the printable form of a check without install.
type CheckReport struct {
	Status           string     `json:"status" yaml:"status"`
	CurrentVersion   string     `json:"current_version,omitempty" yaml:"current_version,omitempty"`
	AvailableVersion string     `json:"available_version,omitempty" yaml:"available_version,omitempty"`
	PublishedAt      *time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
	ReleaseNotes     string     `json:"release_notes,omitempty" yaml:"release_notes,omitempty"`
	Error            string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewCheckReport converts a Source.Check outcome.
func NewCheckReport(current string, out update.CheckOutcome) CheckReport {
	r := CheckReport{Status: out.Kind.String(), CurrentVersion: current}
	if out.Version != "" {
		r.CurrentVersion = out.Version
	}
	switch out.Kind {
	case update.UpdateAvailable:
		if d := out.Descriptor; d != nil {
			r.AvailableVersion = d.AvailableVersion
			r.ReleaseNotes = d.ReleaseNotes
			if !d.PublishedAt.IsZero() {
				t := d.PublishedAt
				r.PublishedAt = &t
			}
		}
	case update.CheckFailed:
		if out.Err != nil {
			r.Error = out.Err.Error()
		}
	}
	return r
}

func (r CheckReport) String() string {
	switch r.Status {
	case update.UpdateAvailable.String():
		var b strings.Builder
		fmt.Fprintf(&b, "Update available: %s → %s", r.CurrentVersion, r.AvailableVersion)
		if r.PublishedAt != nil {
			fmt.Fprintf(&b, " (published %s)", r.PublishedAt.Format("2006-01-02"))
		}
		if notes := strings.TrimSpace(r.ReleaseNotes); notes != "" {
			b.WriteString("\n\n")
			b.WriteString(notes)
		}
		b.WriteString("\n\nRun 'nebula update' to install it.")
		return b.String()
	case update.CheckFailed.String():
		return "Update check failed: " + r.Error
	default:
		return fmt.Sprintf("Nebula %s is the latest version", r.CurrentVersion)
	}
}
