//go:build unix

package update

import (
	"golang.org/x/sys/unix"
)

// restartPlatform replaces the process image. Descriptors opened with
// O_CLOEXEC, which is every descriptor the Go runtime opens, are closed.
func restartPlatform(path string, args, env []string) error {
	return unix.Exec(path, args, env)
}
