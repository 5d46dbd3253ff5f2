package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nebula-desktop/nebula/internal/config"
	"github.com/nebula-desktop/nebula/internal/instance"
	"github.com/nebula-desktop/nebula/internal/output"
	"github.com/nebula-desktop/nebula/internal/types"
)

func newUpdateCmd(inv *invocation) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Check for updates now and install them",
		Long: `Run one update cycle in the foreground, the same way the "Check for
Updates..." menu item does: tell the user when Nebula is already up to date,
otherwise download, install and relaunch.

After an install the new binary is started with the same arguments, so it
checks the release feed once more and reports that it is up to date. That
second check is how the result reflects the version actually running.

Examples:
  nebula update                 # Check and install
  nebula update -o json         # Print the cycle result as JSON
  nebula --skip-update update   # Report that the check was skipped`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return inv.runUpdate(cmd.Context())
		},
	}
}

func (inv *invocation) runUpdate(ctx context.Context) error {
	env, err := inv.setup()
	if err != nil {
		return err
	}
	defer env.close()

	policy := env.policy(types.TriggerManual)

	u, err := env.newUpdater()
	if err != nil {
		return err
	}

	// A running shell owns the binary and takes manual triggers itself.
	if !policy.Suppressed {
		lock, err := instance.Acquire(config.StateDir())
		if errors.Is(err, instance.ErrAlreadyRunning) {
			return fmt.Errorf("%w: send it SIGUSR1 to check for updates", err)
		}
		if err != nil {
			return err
		}
		defer lock.Release()
		u.restarter.BeforeRestart(lock.Release)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, runErr := u.controller.RunCheck(ctx, policy)
	if err := env.out.Write(output.NewCycleReport(res, runErr)); err != nil {
		return err
	}
	return runErr
}
