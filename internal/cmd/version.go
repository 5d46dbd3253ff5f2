package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nebula-desktop/nebula/internal/output"
	"github.com/nebula-desktop/nebula/internal/types"
	"github.com/nebula-desktop/nebula/internal/update"
)

// versionInfo is what `nebula version` prints.
type versionInfo struct {
	Version   string          `json:"version" yaml:"version"`
	Commit    string          `json:"commit" yaml:"commit"`
	Date      string          `json:"date" yaml:"date"`
	BuildMode types.BuildMode `json:"build_mode" yaml:"build_mode"`
	Platform  string          `json:"platform" yaml:"platform"`
}

func (v versionInfo) String() string {
	return fmt.Sprintf("nebula version %s", v.Version)
}

func newVersionCmd(inv *invocation) *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information and check for updates",
		Long: `Display the current nebula version and optionally check whether a newer
release exists. Checking never installs anything; use 'nebula update' for that.

Examples:
  nebula version              # Show current version
  nebula version --check      # Check if update is available
  nebula version -o json      # Build details as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if checkOnly {
				return inv.runVersionCheck(cmd.Context())
			}
			return inv.runVersion()
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Check for updates without installing")

	return cmd
}

func (inv *invocation) runVersion() error {
	format, err := output.ParseFormat(inv.opts.outputFormat)
	if err != nil {
		return err
	}
	return output.NewWriter(inv.stdout, format).Write(versionInfo{
		Version:   inv.info.Version,
		Commit:    inv.info.Commit,
		Date:      inv.info.Date,
		BuildMode: types.ParseBuildMode(inv.info.BuildMode),
		Platform:  update.Detect().String(),
	})
}

// runVersionCheck asks the source without installing. It is an explicit
// request, so the skip flag and build mode do not apply.
func (inv *invocation) runVersionCheck(ctx context.Context) error {
	env, err := inv.setup()
	if err != nil {
		return err
	}
	defer env.close()

	ctx, cancel := context.WithTimeout(ctx, env.cfg.Update.Timeout())
	defer cancel()

	out := env.newSource(nil).Check(ctx)
	if err := env.out.Write(output.NewCheckReport(inv.info.Version, out)); err != nil {
		return err
	}
	if out.Kind == update.CheckFailed {
		return fmt.Errorf("failed to check for updates: %w", out.Err)
	}
	return nil
}
