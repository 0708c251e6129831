package offline

import "go.uber.org/zap"

// LogPrefix tags every worker log entry.
const LogPrefix = "[GCM:SW]"

// NewLogger derives the worker logger from the application logger.
func NewLogger(base *zap.Logger) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return base.Named("sw").With(zap.String("prefix", LogPrefix))
}
