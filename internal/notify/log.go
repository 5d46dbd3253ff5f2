package notify

import (
	"go.uber.org/zap"

	"github.com/nebula-desktop/nebula/internal/update"
)

// Log writes every notice as a log record. It never blocks and nobody can
// acknowledge a prompt, so NotifyUpdateRequired returns false.
type Log struct {
	logger *zap.Logger
}

// NewLog returns a log notifier.
func NewLog(logger *zap.Logger) *Log {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{logger: logger.Named("notify")}
}

func (l *Log) NotifyUpToDate(version string) {
	l.logger.Info(TitleUpToDate, zap.String("version", version))
}

func (l *Log) NotifyUpdateRequired(n update.Notice) bool {
	l.logger.Info(TitleUpdateRequired,
		zap.String("current", n.CurrentVersion),
		zap.String("available", n.AvailableVersion),
	)
	return false
}

func (l *Log) NotifyError(message string) {
	l.logger.Warn(TitleCheckFailed, zap.String("error", message))
}

func (l *Log) Checking() {
	l.logger.Debug("Checking for updates...")
}

func (l *Log) Progress(p update.DownloadProgress) {
	l.logger.Debug("Downloading...", zap.Stringer("progress", p))
}

func (l *Log) Installing() {
	l.logger.Info("Installing update...")
}
