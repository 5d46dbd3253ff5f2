package update

import (
	"fmt"
	"runtime"
	"slices"
)

// AppName prefixes release asset names.
const AppName = "nebula"

var supportedPlatforms = map[string][]string{
	"darwin":  {"amd64", "arm64"},
	"linux":   {"amd64", "arm64"},
	"windows": {"amd64", "arm64"},
}

// Detect returns the current platform (OS and architecture)
func Detect() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// BinaryName returns the release asset name for this platform,
// e.g. "nebula-darwin-arm64" or "nebula-windows-amd64.exe".
func (p Platform) BinaryName() string {
	name := fmt.Sprintf("%s-%s-%s", AppName, p.OS, p.Arch)
	if p.OS == "windows" {
		name += ".exe"
	}
	return name
}

// Key returns the "<os>-<arch>" key used by update manifests.
func (p Platform) Key() string {
	return p.OS + "-" + p.Arch
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// IsSupported returns true if release artifacts are published for p.
func (p Platform) IsSupported() bool {
	archs, ok := supportedPlatforms[p.OS]
	return ok && slices.Contains(archs, p.Arch)
}

// requireSupported returns ErrUnsupportedPlatform when p has no artifacts.
func (p Platform) requireSupported() error {
	if !p.IsSupported() {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}
	return nil
}
