// Package app is the long-running nebula shell: it owns the single-instance
// lock, fires the startup update check and turns manual triggers into
// update cycles.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nebula-desktop/nebula/internal/instance"
	"github.com/nebula-desktop/nebula/internal/update"
)

// Runner runs one update cycle. *update.Controller implements it.
type Runner interface {
	RunCheck(ctx context.Context, p update.Policy) (*update.Result, error)
}

// Options configures a Shell.
type Options struct {
	Version  string
	StateDir string // lock file location
	Runner   Runner

	StartupPolicy update.Policy
	ManualPolicy  update.Policy
	// BlockStartup runs the startup check before the shell reports ready.
	BlockStartup bool

	// Triggers delivers manual "check for updates" requests. Nil means
	// SIGUSR1 where supported.
	Triggers <-chan struct{}
	// BeforeRestart registers a hook run before the process is replaced.
	// The shell uses it to release the lock.
	BeforeRestart func(func() error)
	// Cleanup runs once after the lock is held, e.g. to remove the backup
	// left by the previous update.
	Cleanup func() error
	// Ready is called once the shell is accepting triggers.
	Ready func()

	Logger *zap.Logger
}

// Shell is the application's main loop.
type Shell struct {
	opts   Options
	logger *zap.Logger
	wg     sync.WaitGroup
}

// New creates a shell.
func New(opts Options) *Shell {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{opts: opts, logger: logger}
}

// Run blocks until ctx is cancelled or an installed update asks the shell
// to stop, then waits for running cycles. A second instance returns nil
// right away.
func (s *Shell) Run(ctx context.Context) error {
	lock, err := instance.Acquire(s.opts.StateDir)
	if errors.Is(err, instance.ErrAlreadyRunning) {
		s.logger.Info("Another instance is already running, exiting", zap.Error(err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			s.logger.Warn("Failed to release instance lock", zap.Error(err))
		}
	}()
	if s.opts.BeforeRestart != nil {
		s.opts.BeforeRestart(lock.Release)
	}

	s.logger.Info(fmt.Sprintf("Nebula v%s starting...", s.opts.Version))

	if s.opts.Cleanup != nil {
		if err := s.opts.Cleanup(); err != nil {
			s.logger.Warn("Startup cleanup failed", zap.Error(err))
		}
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	if s.opts.BlockStartup {
		if !s.cycle(ctx, s.opts.StartupPolicy) {
			stop()
		}
	} else {
		s.spawn(ctx, stop, s.opts.StartupPolicy)
	}

	triggers := s.opts.Triggers
	if triggers == nil {
		triggers = manualTriggers(ctx)
	}

	s.logger.Debug("Shell ready")
	if s.opts.Ready != nil {
		s.opts.Ready()
	}

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case _, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			s.logger.Info("Manual update check requested")
			s.spawn(ctx, stop, s.opts.ManualPolicy)
		}
	}

	s.logger.Info("Shutting down")
	s.wg.Wait()
	return nil
}

func (s *Shell) spawn(ctx context.Context, stop context.CancelFunc, p update.Policy) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if !s.cycle(ctx, p) {
			stop()
		}
	}()
}

// cycle runs one update cycle and reports whether the shell should keep
// running.
func (s *Shell) cycle(ctx context.Context, p update.Policy) bool {
	res, err := s.opts.Runner.RunCheck(ctx, p)
	switch {
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		s.logger.Debug("Update cycle abandoned on shutdown", zap.String("trigger", p.Trigger.String()))
	case err != nil:
		s.logger.Error("[updater] "+err.Error(),
			zap.String("trigger", p.Trigger.String()),
			zap.String("kind", string(update.KindOf(err))),
		)
	}
	if res != nil && !res.Continue {
		s.logger.Warn("Update installed but the shell could not relaunch; restart Nebula to finish",
			zap.String("version", res.AvailableVersion))
		return false
	}
	return true
}
