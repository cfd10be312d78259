package obs

import (
	"log/slog"
	"time"
)

// Time reports an operation's duration through log when the surrounding
// function returns. Use it in a defer with a named error return so failures
// are logged together with the elapsed time:
//
//	func (c *SQLMatrixCache) GetMany(...) (_ map[string]ports.Leg, err error) {
//		defer obs.Time(c.Log, "matrix.cache.GetMany")(&err)
//
// A nil logger disables the timer.
func Time(log *slog.Logger, op string) func(errp *error) {
	if log == nil {
		return func(*error) {}
	}

	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Warn("operation failed", "op", op, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		log.Debug("operation finished", "op", op, "dur_ms", dur.Milliseconds())
	}
}
