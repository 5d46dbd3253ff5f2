//go:build darwin || windows

package notify

import (
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/nebula-desktop/nebula/internal/update"
)

// Native shows OS dialogs. Dialogs cannot render progress, so progress is
// forwarded to the log.
type Native struct {
	*Log
}

// NewNative returns a dialog notifier.
func NewNative(logger *zap.Logger) (*Native, error) {
	return &Native{Log: NewLog(logger)}, nil
}

// NotifyUpToDate shows an information dialog.
func (n *Native) NotifyUpToDate(version string) {
	dialog.Message("%s", UpToDateMessage(version)).Title(TitleUpToDate).Info()
}

// NotifyUpdateRequired shows a single-button dialog and returns once it is
// dismissed.
func (n *Native) NotifyUpdateRequired(notice update.Notice) bool {
	dialog.Message("%s", UpdateRequiredMessage(notice)).Title(TitleUpdateRequired).Info()
	return true
}

// NotifyError shows an error dialog.
func (n *Native) NotifyError(message string) {
	dialog.Message("%s", message).Title(TitleCheckFailed).Error()
}
