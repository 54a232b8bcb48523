package heritage

import "github.com/rs/zerolog"

// Tracer receives refusals and anomalies. It never influences composition.
type Tracer interface {
	Trace(msg string, err error)
}

// LogTracer writes traces to a zerolog logger at debug level.
type LogTracer struct {
	zlog zerolog.Logger
}

// NewLogTracer returns a Tracer writing to l with component=heritage.
func NewLogTracer(l zerolog.Logger) *LogTracer {
	return &LogTracer{zlog: l.With().Str("component", "heritage").Logger()}
}

// Trace implements Tracer.
func (t *LogTracer) Trace(msg string, err error) {
	ev := t.zlog.Debug()
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// NopTracer discards traces.
type NopTracer struct{}

// Trace implements Tracer.
func (NopTracer) Trace(string, error) {}

// trace reports msg and hands back ret so refusals can be returned in one
// statement.
func trace[T any](t Tracer, msg string, err error, ret T) T {
	t.Trace(msg, err)
	return ret
}
