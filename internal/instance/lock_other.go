//go:build !unix && !windows

package instance

import "os"

// No advisory locks here; every process gets the lock.
func tryLock(*os.File) error { return nil }

func unlock(*os.File) error { return nil }
