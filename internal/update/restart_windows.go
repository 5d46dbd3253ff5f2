//go:build windows

package update

import (
	"os"
	"os/exec"
)

// restartPlatform starts a detached copy of the executable and exits.
func restartPlatform(path string, args, env []string) error {
	cmd := exec.Command(path, childArgs(args)...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
