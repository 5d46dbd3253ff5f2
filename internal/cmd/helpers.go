package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/nebula-desktop/nebula/internal/config"
	"github.com/nebula-desktop/nebula/internal/interactive"
	"github.com/nebula-desktop/nebula/internal/logging"
	"github.com/nebula-desktop/nebula/internal/notify"
	"github.com/nebula-desktop/nebula/internal/output"
	"github.com/nebula-desktop/nebula/internal/types"
	"github.com/nebula-desktop/nebula/internal/update"
)

// invocation is what every command of one run shares: build info, raw
// arguments, flags and streams.
type invocation struct {
	info   BuildInfo
	args   []string
	opts   *globalOptions
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// env is the per-command setup: config, logger and output writer.
type env struct {
	inv      *invocation
	cfg      *config.Config
	cfgPath  string
	logger   *zap.Logger
	closeLog func() error
	out      *output.Writer
}

// setup loads config and builds the logger and output writer.
func (inv *invocation) setup() (*env, error) {
	format, err := output.ParseFormat(inv.opts.outputFormat)
	if err != nil {
		return nil, err
	}

	cfg, path, err := config.LoadOrDefault(inv.opts.configPath)
	if err != nil {
		return nil, err
	}

	if inv.opts.notifier != "" {
		kind, err := types.ParseNotifierKind(inv.opts.notifier)
		if err != nil {
			return nil, err
		}
		cfg.UI.Notifier = kind
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		Verbose: inv.opts.verbose,
		Quiet:   inv.opts.quiet,
		Console: inv.stderr,
		Dir:     cfg.Log.ResolvedDir(),
		File:    cfg.Log.File,
	})
	if logger == nil {
		return nil, err
	}
	if err != nil {
		logger.Warn("File logging disabled", zap.Error(err))
	}
	if path != "" {
		logger.Debug("Loaded config", zap.String("path", path))
	}

	return &env{
		inv:      inv,
		cfg:      cfg,
		cfgPath:  path,
		logger:   logger,
		closeLog: closeLog,
		out:      output.NewWriter(inv.stdout, format),
	}, nil
}

func (e *env) close() {
	_ = e.closeLog()
}

// policy derives the update policy for trigger from flags, build and config.
func (e *env) policy(trigger types.Trigger) update.Policy {
	prompt := e.cfg.Update.StartupPrompt
	if trigger.IsManual() {
		prompt = e.cfg.Update.ManualPrompt
	}
	return update.NewPolicy(update.PolicyInput{
		Args:    e.inv.args,
		Skip:    e.inv.opts.skipUpdate,
		Build:   types.ParseBuildMode(e.inv.info.BuildMode),
		Version: e.inv.info.Version,
		Trigger: trigger,
		Prompt:  prompt,
	})
}

// newFeed builds the release feed the config selects. Feed requests are
// bounded by the check timeout; downloads are not.
func (e *env) newFeed() update.Feed {
	client := &http.Client{Timeout: e.cfg.Update.Timeout()}
	u := e.cfg.Update
	if u.Feed == types.FeedManifest {
		return update.NewManifestFeed(u.ManifestURL).WithClient(client)
	}
	return update.NewGitHubFeed(u.Owner, u.Repo).WithToken(u.Token).WithClient(client)
}

// newSource builds the HTTP update source around replacer.
func (e *env) newSource(replacer update.Replacer) *update.HTTPSource {
	return update.NewHTTPSource(e.inv.info.Version, e.newFeed(), replacer,
		update.WithDownloadDir(e.cfg.Update.ResolvedDownloadDir()),
		update.WithSourceLogger(e.logger),
	)
}

// updater is the wired update stack.
type updater struct {
	controller *update.Controller
	source     *update.HTTPSource
	replacer   *update.BinaryReplacer
	restarter  *update.ProcessRestarter
}

// newUpdater wires the controller for the running executable.
func (e *env) newUpdater() (*updater, error) {
	exe, err := currentExecutable()
	if err != nil {
		return nil, err
	}

	notifier, err := notify.New(e.cfg.UI.Notifier, notify.Options{
		Out:         e.inv.stdout,
		In:          e.inv.stdin,
		Logger:      e.logger,
		Interactive: e.inv.stdin == io.Reader(os.Stdin) && interactive.IsTerminal(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	replacer := update.NewBinaryReplacer(exe).WithVerifyArgs(e.cfg.Update.VerifyArgs...)
	source := e.newSource(replacer)
	restarter := update.NewProcessRestarter(e.logger)

	return &updater{
		controller: update.NewController(source, notifier, restarter, update.WithLogger(e.logger)),
		source:     source,
		replacer:   replacer,
		restarter:  restarter,
	}, nil
}

func currentExecutable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get current binary path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve binary path: %w", err)
	}
	return resolved, nil
}
