package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// pgxLogger feeds pgx trace events into zerolog. Statements slower than slow are
// promoted to warn so they surface even when the service logs at info.
type pgxLogger struct {
	logger zerolog.Logger
	slow   time.Duration
}

func newPgxLogger(logger zerolog.Logger, slow time.Duration) *pgxLogger {
	return &pgxLogger{
		logger: logger.With().Str("module", "repository").Str("component", "pgx").Logger(),
		slow:   slow,
	}
}

func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	if level == tracelog.LogLevelNone {
		return
	}

	elapsed, timed := data["time"].(time.Duration)
	delete(data, "time")

	var event *zerolog.Event
	switch {
	case timed && l.slow > 0 && elapsed >= l.slow:
		event = l.logger.Warn().Bool("slow", true)
	case level == tracelog.LogLevelTrace:
		event = l.logger.Trace()
	case level == tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case level == tracelog.LogLevelInfo:
		// pgx reports every finished statement at info; that is debug noise for us.
		event = l.logger.Debug()
	case level == tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case level == tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info().Str("pgx_level", level.String())
	}
	if event == nil {
		return
	}

	if s, ok := data["sql"].(string); ok {
		event = event.Str("sql", s)
		delete(data, "sql")
	}
	if timed {
		event = event.Dur("elapsed", elapsed)
	}
	if len(data) > 0 {
		event = event.Fields(data)
	}
	event.Msg(msg)
}

// traceLevelFor picks how much pgx should report. Finished statements are reported at
// info, so slow query detection needs at least that.
func traceLevelFor(level zerolog.Level, slow time.Duration) tracelog.LogLevel {
	var out tracelog.LogLevel
	switch {
	case level <= zerolog.TraceLevel:
		out = tracelog.LogLevelTrace
	case level <= zerolog.DebugLevel:
		out = tracelog.LogLevelDebug
	case level <= zerolog.InfoLevel:
		out = tracelog.LogLevelInfo
	case level <= zerolog.WarnLevel:
		out = tracelog.LogLevelWarn
	default:
		out = tracelog.LogLevelError
	}
	if slow > 0 && out < tracelog.LogLevelInfo {
		out = tracelog.LogLevelInfo
	}
	return out
}
