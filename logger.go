package rt

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

func newNopLogger() *slog.Logger { return slog.New(slog.DiscardHandler) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for rt and its executors.
// By default rt logs nothing. Pass nil to restore that.
//
// Levels used:
//   - [slog.LevelDebug]: per-frame timing, buffer sizes, dispatch geometry
//   - [slog.LevelInfo]: accelerator registration and renderer setup
//   - [slog.LevelWarn]: CPU fallback, resource release errors
//
// Example:
//
//	rt.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	if a := RegisteredAccelerator(); a != nil {
		propagateLogger(a, l)
	}
}

// Logger returns the current logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

type loggerSetter interface {
	SetLogger(*slog.Logger)
}

func propagateLogger(a Accelerator, l *slog.Logger) {
	if ls, ok := a.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

// logFrame records one finished frame at Debug. Viewers render every tick,
// so the attributes are only built when Debug is enabled.
func logFrame(executor string, f *FrameData, elapsed time.Duration) {
	l := Logger()
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.LogAttrs(context.Background(), slog.LevelDebug, "rt: frame rendered",
		slog.String("executor", executor),
		slog.Int("width", int(f.Width)),
		slog.Int("height", int(f.Height)),
		slog.Int("objects", int(f.ObjectCount)),
		slog.String("shadow", f.Shadow.String()),
		slog.Duration("elapsed", elapsed))
}
