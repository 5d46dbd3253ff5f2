package update

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Outcome summarizes how a cycle ended.
type Outcome string

const (
	OutcomeSuppressed  Outcome = "suppressed"
	OutcomeBusy        Outcome = "busy"
	OutcomeCheckFailed Outcome = "check-failed"
	OutcomeNoUpdate    Outcome = "no-update"
	OutcomeCancelled   Outcome = "cancelled"
	OutcomeFailed      Outcome = "failed"
	OutcomeUpdated     Outcome = "updated"
)

// Result is what RunCheck reports back to the trigger. Continue tells the
// caller whether its startup sequence may proceed on the current binary.
type Result struct {
	Continue         bool    `json:"continue" yaml:"continue"`
	Outcome          Outcome `json:"outcome" yaml:"outcome"`
	CurrentVersion   string  `json:"current_version,omitempty" yaml:"current_version,omitempty"`
	AvailableVersion string  `json:"available_version,omitempty" yaml:"available_version,omitempty"`
	CycleID          string  `json:"cycle_id" yaml:"cycle_id"`
}

// Controller runs update cycles. It keeps no state between cycles apart
// from the single-flight flag.
type Controller struct {
	source    Source
	notifier  Notifier
	restarter Restarter
	logger    *zap.Logger
	newID     func() string
	inFlight  atomic.Bool
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger phase transitions are written to.
func WithLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithCycleIDs replaces the cycle ID generator.
func WithCycleIDs(gen func() string) ControllerOption {
	return func(c *Controller) { c.newID = gen }
}

// NewController creates a controller.
func NewController(source Source, notifier Notifier, restarter Restarter, opts ...ControllerOption) *Controller {
	c := &Controller{
		source:    source,
		notifier:  notifier,
		restarter: restarter,
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunCheck runs one update cycle.
//
// A failed check never produces an error: the result says Continue and the
// failure is logged. Cancelling ctx before the commit returns ctx's error,
// still with Continue. Once the download starts
// the cycle is committed and runs to the end regardless of ctx; transfer,
// install and restart failures are returned as *Error. On a successful
// restart RunCheck does not return.
func (c *Controller) RunCheck(ctx context.Context, p Policy) (*Result, error) {
	res := &Result{Continue: true, CycleID: c.newID()}
	log := c.logger.With(zap.String("cycle", res.CycleID), zap.String("trigger", string(p.Trigger)))

	if p.Suppressed {
		log.Info("Skipping update check (--skip-update flag or debug build)", zap.String("phase", "suppressed"))
		res.Outcome = OutcomeSuppressed
		return res, nil
	}

	if !c.inFlight.CompareAndSwap(false, true) {
		log.Info("Update cycle already running, skipping this trigger", zap.String("phase", "busy"))
		res.Outcome = OutcomeBusy
		return res, nil
	}
	defer c.inFlight.Store(false)

	reporter, _ := c.notifier.(Reporter)
	if reporter != nil && p.AnnounceUpToDate {
		reporter.Checking()
	}

	log.Info("Checking for updates...", zap.String("phase", "check-start"))
	out := c.source.Check(ctx)
	res.CurrentVersion = out.Version

	if out.Kind == UpdateAvailable && out.Descriptor == nil {
		out = Failed(errors.New("update reported without a descriptor"))
	}

	switch out.Kind {
	case NoUpdate:
		log.Info("No update available", zap.String("phase", "no-update"), zap.String("version", out.Version))
		res.Outcome = OutcomeNoUpdate
		if p.AnnounceUpToDate {
			_ = c.await(ctx, func() { c.notifier.NotifyUpToDate(out.Version) })
		}
		return res, nil

	case UpdateAvailable:

	default:
		log.Warn("Update check failed, continuing anyway", zap.String("phase", "check-failed"), zap.Error(out.Err))
		res.Outcome = OutcomeCheckFailed
		if p.AnnounceUpToDate {
			_ = c.await(ctx, func() { c.notifier.NotifyError(userMessage(out.Err)) })
		}
		return res, nil
	}

	d := out.Descriptor
	res.CurrentVersion = d.CurrentVersion
	res.AvailableVersion = d.AvailableVersion
	log = log.With(zap.String("current", d.CurrentVersion), zap.String("available", d.AvailableVersion))
	log.Info("Update available", zap.String("phase", "update-found"), zap.Stringer("prompt", p.Prompt))

	if p.Prompt.IsMandatory() {
		var ack bool
		notice := Notice{
			CurrentVersion:   d.CurrentVersion,
			AvailableVersion: d.AvailableVersion,
			ReleaseNotes:     d.ReleaseNotes,
		}
		if err := c.await(ctx, func() { ack = c.notifier.NotifyUpdateRequired(notice) }); err != nil {
			log.Info("Update abandoned before download", zap.String("phase", "cancelled"), zap.Error(err))
			res.Outcome = OutcomeCancelled
			return res, err
		}
		// The prompt informs, it does not gate.
		log.Debug("Update prompt closed", zap.Bool("acknowledged", ack))
	}

	return c.install(context.WithoutCancel(ctx), log, d, reporter, res)
}

// install runs the committed part of a cycle: download, install, restart.
func (c *Controller) install(ctx context.Context, log *zap.Logger, d *Descriptor, reporter Reporter, res *Result) (*Result, error) {
	events := make(chan TransferEvent, 16)
	errc := make(chan error, 1)

	log.Info("Downloading update...", zap.String("phase", "download-start"))
	go func() {
		defer close(events)
		errc <- c.source.DownloadAndInstall(ctx, d, events)
	}()

	var (
		downloaded bool
		last       DownloadProgress
		pl         progressLog
	)
	for ev := range events {
		switch ev.Kind {
		case EventProgress:
			if ev.Progress.BytesReceived < last.BytesReceived {
				log.Debug("Dropping out-of-order progress", zap.Uint64("bytes", ev.Progress.BytesReceived))
				continue
			}
			last = ev.Progress
			if pl.due(last) {
				logProgress(log, last)
			}
			if reporter != nil {
				reporter.Progress(last)
			}
		case EventDownloaded:
			if downloaded {
				continue
			}
			downloaded = true
			c.installing(log, reporter)
		}
	}

	if err := <-errc; err != nil {
		kind, op := TransferFailure, "download"
		if downloaded {
			kind, op = InstallFailure, "install"
		}
		err = withKind(kind, op, err)
		log.Error("Update failed", zap.String("phase", "failed"), zap.Error(err))
		res.Outcome = OutcomeFailed
		return res, err
	}
	if !downloaded {
		c.installing(log, reporter)
	}

	log.Info("Update installed, restarting...", zap.String("phase", "install-complete"))
	res.Outcome = OutcomeUpdated
	res.Continue = false

	log.Info("Restarting", zap.String("phase", "restart"))
	_ = log.Sync()
	if err := c.restarter.Restart(); err != nil {
		err = withKind(RestartFailure, "restart", err)
		log.Error("Restart failed, still running the previous binary", zap.String("phase", "restart-failed"), zap.Error(err))
		return res, err
	}
	return res, nil
}

func (c *Controller) installing(log *zap.Logger, reporter Reporter) {
	log.Info("Download complete, installing...", zap.String("phase", "install-start"))
	if reporter != nil {
		reporter.Installing()
	}
}

// await runs fn on its own goroutine, since notifiers may block on a native
// dialog, and waits for it or for ctx. fn keeps running if ctx wins.
func (c *Controller) await(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// progressLog rate-limits progress log lines to one per 10% step, or one
// per MiB when the total is unknown.
type progressLog struct {
	started bool
	bucket  uint64
}

func (pl *progressLog) due(p DownloadProgress) bool {
	var bucket uint64
	if pct, ok := p.Percent(); ok {
		bucket = uint64(pct) / 10
	} else {
		bucket = p.BytesReceived >> 20
	}
	if pl.started && bucket == pl.bucket {
		return false
	}
	pl.started, pl.bucket = true, bucket
	return true
}

func logProgress(log *zap.Logger, p DownloadProgress) {
	fields := []zap.Field{zap.String("phase", "download-progress"), zap.Uint64("bytes", p.BytesReceived)}
	if total, ok := p.Total(); ok {
		fields = append(fields, zap.Uint64("total", total))
	}
	log.Info("Downloaded "+p.String(), fields...)
}

// userMessage strips the failure kind so notifiers show the cause.
func userMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
