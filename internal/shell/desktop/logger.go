//go:build !(android || ios)

package desktop

import "go.uber.org/zap"

// wailsLogger routes window runtime logs into zap.
type wailsLogger struct {
	sugar *zap.SugaredLogger
}

func (l *wailsLogger) Print(message string)   { l.sugar.Info(message) }
func (l *wailsLogger) Trace(message string)   { l.sugar.Debug(message) }
func (l *wailsLogger) Debug(message string)   { l.sugar.Debug(message) }
func (l *wailsLogger) Info(message string)    { l.sugar.Info(message) }
func (l *wailsLogger) Warning(message string) { l.sugar.Warn(message) }
func (l *wailsLogger) Error(message string)   { l.sugar.Error(message) }

// Fatal is logged at error level; the runtime decides whether to exit.
func (l *wailsLogger) Fatal(message string) { l.sugar.Error(message) }
