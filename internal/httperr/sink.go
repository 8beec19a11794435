// Diagnostic log sinks. The handler writes at most one string per invocation;
// sinks decide where it lands. Writes are best-effort and must never affect
// the response.
package httperr

import (
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// LogSink receives the diagnostic line for a handled error. Implementations
// must be safe for concurrent use and must not block the request path beyond
// a single write.
type LogSink interface {
	Write(msg string)
}

// ZerologSink routes diagnostic lines through a zerolog logger at error level.
type ZerologSink struct {
	Logger *zerolog.Logger
}

// Write implements LogSink.
func (s ZerologSink) Write(msg string) {
	lg := s.Logger
	if lg == nil {
		lg = &log.Logger
	}
	lg.Error().Msg(msg)
}

// ThrottledSink wraps another sink with a token bucket so an error storm
// cannot flood the log. Lines arriving while the bucket is empty are dropped,
// never queued.
type ThrottledSink struct {
	next    LogSink
	limiter *rate.Limiter
	dropped atomic.Uint64
}

// NewThrottledSink wraps next with a bucket refilled at rps tokens per second
// and holding at most burst tokens.
func NewThrottledSink(next LogSink, rps float64, burst int) *ThrottledSink {
	if burst < 1 {
		burst = 1
	}
	return &ThrottledSink{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Write implements LogSink. Drops are counted but otherwise silent.
func (s *ThrottledSink) Write(msg string) {
	if !s.limiter.Allow() {
		s.dropped.Add(1)
		return
	}
	s.next.Write(msg)
}

// Dropped returns how many lines were discarded by the throttle.
func (s *ThrottledSink) Dropped() uint64 { return s.dropped.Load() }
