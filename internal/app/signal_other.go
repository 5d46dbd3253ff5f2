//go:build !unix

package app

import "context"

// manualTriggers never fires here; use `nebula update` instead.
func manualTriggers(context.Context) <-chan struct{} {
	return nil
}
