//go:build !nogpu

package gpu

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/rt"
)

// executorName tags every record from this package and is the accelerator
// name renderers report.
const executorName = "wgpu"

// propagated is the logger last handed over by rt.SetLogger, already tagged
// with the executor. Nil means follow rt.Logger.
var propagated atomic.Pointer[slog.Logger]

// slogger returns the logger for accelerator records.
func slogger() *slog.Logger {
	if l := propagated.Load(); l != nil {
		return l
	}
	return rt.Logger().With("executor", executorName)
}

// setLogger installs l for accelerator records; nil goes back to following
// rt.Logger.
func setLogger(l *slog.Logger) {
	if l == nil {
		propagated.Store(nil)
		return
	}
	propagated.Store(l.With("executor", executorName))
}
