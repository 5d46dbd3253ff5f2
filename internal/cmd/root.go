package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nebula-desktop/nebula/internal/app"
	"github.com/nebula-desktop/nebula/internal/config"
	"github.com/nebula-desktop/nebula/internal/types"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	Date      string
	BuildMode string
}

// globalOptions holds the persistent flags.
type globalOptions struct {
	outputFormat string
	configPath   string
	verbose      bool
	quiet        bool
	skipUpdate   bool
	notifier     string
}

// Execute runs the CLI with the process arguments.
func Execute(info BuildInfo) error {
	root := NewRootCmd(info, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	return root.Execute()
}

// NewRootCmd builds the command tree. args are the raw arguments; the skip
// flag is matched against them literally.
func NewRootCmd(info BuildInfo, args []string, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{}
	inv := &invocation{info: info, args: args, opts: opts, stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "nebula",
		Short: "The Nebula desktop shell",
		Long: `nebula runs the Nebula desktop shell.

On start it checks for a newer release in the background and installs it.
Send SIGUSR1 to a running shell, or run 'nebula update', to check on demand.
Pass --skip-update to launch without checking.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return inv.runShell(cmd.Context())
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate(fmt.Sprintf("nebula version %s (commit %s, built %s, %s)\n",
		info.Version, info.Commit, info.Date, types.ParseBuildMode(info.BuildMode)))

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.outputFormat, "output", "o", "text", "Output format: text, json, yaml")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&opts.skipUpdate, "skip-update", false, "Do not check for updates")
	rootCmd.PersistentFlags().StringVar(&opts.notifier, "notifier", "", "How to notify: auto, native, terminal, log (overrides config)")

	rootCmd.AddCommand(newUpdateCmd(inv))
	rootCmd.AddCommand(newVersionCmd(inv))
	rootCmd.AddCommand(newCompletionCmd())

	// Register completion functions for enum flags
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("notifier", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var kinds []string
		for _, k := range types.AllNotifierKinds() {
			kinds = append(kinds, k.String())
		}
		return kinds, cobra.ShellCompDirectiveNoFileComp
	})

	return rootCmd
}

func (inv *invocation) runShell(ctx context.Context) error {
	env, err := inv.setup()
	if err != nil {
		return err
	}
	defer env.close()

	u, err := env.newUpdater()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shell := app.New(app.Options{
		Version:       inv.info.Version,
		StateDir:      config.StateDir(),
		Runner:        u.controller,
		StartupPolicy: env.policy(types.TriggerStartup),
		ManualPolicy:  env.policy(types.TriggerManual),
		BlockStartup:  env.cfg.Update.BlockStartup,
		BeforeRestart: u.restarter.BeforeRestart,
		Cleanup:       u.replacer.RemoveBackup,
		Logger:        env.logger,
	})
	return shell.Run(ctx)
}
