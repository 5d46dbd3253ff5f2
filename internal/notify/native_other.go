//go:build !darwin && !windows

package notify

import (
	"go.uber.org/zap"
)

// Native is unavailable on this platform.
type Native struct {
	*Log
}

// NewNative always fails here.
func NewNative(_ *zap.Logger) (*Native, error) {
	return nil, ErrNativeUnavailable
}
