// Package obslog provides the structured logging a sketch emits for its
// own housekeeping (resize, rebuild, trim) and for codec validation
// failures. It is optional: a sketch built without a Logger logs nothing.
package obslog

import "go.uber.org/zap"

// Logger wraps a zap.Logger with the small, fixed vocabulary of events an
// UpdateSketch reports about its own table maintenance.
type Logger struct {
	z *zap.Logger
}

// New builds a production zap logger (JSON, info level and above).
func New() (*Logger, error) {
	z, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return &Logger{z: z}, nil
}

// Nop returns a Logger that discards everything. Sketches default to this
// when no Logger is supplied to Builder.
func Nop() *Logger {
	return &Logger{z: zap.NewNop()}
}

// Resize records a table growth: the current size grew from 2^lgOld to
// 2^lgNew without lowering theta.
func (l *Logger) Resize(lgOld, lgNew uint8) {
	l.z.Debug("thetadup: table resize",
		zap.Uint8("lg_old_size", lgOld),
		zap.Uint8("lg_new_size", lgNew),
	)
}

// Rebuild records a theta-lowering rebuild: the sketch dropped to
// retainedAfter entries under the new theta cutoff.
func (l *Logger) Rebuild(newTheta uint64, retainedAfter uint32) {
	l.z.Info("thetadup: table rebuild",
		zap.Uint64("new_theta", newTheta),
		zap.Uint32("retained_after", retainedAfter),
	)
}

// Trim records an explicit trim that triggered a rebuild.
func (l *Logger) Trim(retainedBefore, retainedAfter uint32) {
	l.z.Debug("thetadup: trim",
		zap.Uint32("retained_before", retainedBefore),
		zap.Uint32("retained_after", retainedAfter),
	)
}

// CodecError records a deserialization or invariant failure that a caller
// will also receive as a returned error; the log line gives it an
// observable trail independent of whether the caller chooses to log the
// returned error itself.
func (l *Logger) CodecError(op string, err error) {
	l.z.Warn("thetadup: codec error", zap.String("op", op), zap.Error(err))
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.z.Sync()
}
