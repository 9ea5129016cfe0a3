package guardian

import (
	"log"
	"time"
)

// Channel identifies which part of a call's lifecycle an Event belongs
// to.
type Channel string

const (
	// ChannelLifecycle carries client construction, reconfiguration,
	// and shutdown events.
	ChannelLifecycle Channel = "lifecycle"
	// ChannelRequest carries per-call request/response detail.
	ChannelRequest Channel = "request"
	// ChannelRetry carries retry decisions: attempt number, computed
	// delay, error kind.
	ChannelRetry Channel = "retry"
)

// Event is one structured diagnostics record. Events carry enough
// context to reconstruct the retry decision trail for a call.
type Event struct {
	Time       time.Time
	Channel    Channel
	Message    string
	RequestID  string
	Attempt    int
	Delay      time.Duration
	Kind       Kind
	StatusCode int
}

// DebugSink receives diagnostics events. Implementations must be safe
// for concurrent use and must not block: events are emitted inline from
// the request path. Sinks observe behavior, never influence it.
type DebugSink interface {
	Emit(Event)
}

// nopSink discards all events. It is the default sink so the emit path
// is always non-nil.
type nopSink struct{}

func (nopSink) Emit(Event) {}

// logSink writes events to a standard library logger.
type logSink struct {
	l *log.Logger
}

// NewLogSink returns a DebugSink writing one line per event to l. A nil
// logger uses the default standard logger.
func NewLogSink(l *log.Logger) DebugSink {
	if l == nil {
		l = log.Default()
	}
	return &logSink{l: l}
}

func (s *logSink) Emit(e Event) {
	switch {
	case e.Delay > 0:
		s.l.Printf("guardian[%s] %s requestID=%s attempt=%d kind=%s status=%d delay=%s",
			e.Channel, e.Message, e.RequestID, e.Attempt, e.Kind, e.StatusCode, e.Delay)
	case e.Kind != "":
		s.l.Printf("guardian[%s] %s requestID=%s attempt=%d kind=%s status=%d",
			e.Channel, e.Message, e.RequestID, e.Attempt, e.Kind, e.StatusCode)
	case e.RequestID != "":
		s.l.Printf("guardian[%s] %s requestID=%s attempt=%d status=%d",
			e.Channel, e.Message, e.RequestID, e.Attempt, e.StatusCode)
	default:
		s.l.Printf("guardian[%s] %s", e.Channel, e.Message)
	}
}
