package update

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ProcessRestarter relaunches the running executable with its original
// arguments and environment. On Unix the process image is replaced with
// exec; on Windows a new process is spawned and the current one exits.
type ProcessRestarter struct {
	mu     sync.Mutex
	hooks  []func() error
	args   []string
	env    []string
	logger *zap.Logger

	executable func() (string, error)
	replace    func(path string, args, env []string) error
}

// NewProcessRestarter creates a restarter for the current process.
func NewProcessRestarter(logger *zap.Logger) *ProcessRestarter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessRestarter{
		args:       os.Args,
		env:        os.Environ(),
		logger:     logger,
		executable: os.Executable,
		replace:    restartPlatform,
	}
}

// BeforeRestart registers fn to run just before the process is replaced,
// e.g. to release a lock the new process must acquire. Hooks run in
// registration order; the first error aborts the restart.
func (r *ProcessRestarter) BeforeRestart(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// childArgs drops argv[0], which exec.Command supplies itself.
func childArgs(args []string) []string {
	if len(args) < 2 {
		return nil
	}
	return args[1:]
}

// Restart implements Restarter. It returns only on failure.
func (r *ProcessRestarter) Restart() error {
	path, err := r.executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}

	r.mu.Lock()
	hooks := append([]func() error(nil), r.hooks...)
	r.mu.Unlock()
	for _, fn := range hooks {
		if err := fn(); err != nil {
			return fmt.Errorf("before restart: %w", err)
		}
	}

	args := r.args
	if len(args) == 0 {
		args = []string{path}
	}

	r.logger.Info("Relaunching", zap.String("path", path), zap.Strings("args", args))
	_ = r.logger.Sync()
	if err := r.replace(path, args, r.env); err != nil {
		return fmt.Errorf("failed to relaunch %s: %w", path, err)
	}
	return nil
}
