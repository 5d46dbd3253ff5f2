//go:build unix

package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// manualTriggers turns SIGUSR1 into update requests, the headless stand-in
// for the "Check for Updates..." menu item.
func manualTriggers(ctx context.Context) <-chan struct{} {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGUSR1)

	out := make(chan struct{})
	go func() {
		defer signal.Stop(sig)
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sig:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
