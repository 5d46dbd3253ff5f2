//go:build !unix && !windows

package update

import (
	"fmt"
	"runtime"
)

func restartPlatform(string, []string, []string) error {
	return fmt.Errorf("%w: cannot relaunch on %s", ErrUnsupportedPlatform, runtime.GOOS)
}
