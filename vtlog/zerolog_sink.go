package vtlog

import (
	"io"

	"github.com/rs/zerolog"
)

// zerologSink backs Sink with github.com/rs/zerolog, the structured
// logger the retrieval pack's page-pool cache (mtrqq-squirrel) pulls in
// directly rather than hand-rolling one.
type zerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink builds a Sink that writes structured, leveled entries
// to w. Each emit carries the category as a "category" field, matching
// how squirrel's clockPagePool tags its page-pool log lines.
func NewZerologSink(w io.Writer) Sink {
	return &zerologSink{logger: zerolog.New(w).With().Timestamp().Logger()}
}

func (s *zerologSink) Emit(cat Category, sev Severity, msg string) {
	s.event(cat, sev).Msg(msg)
}

func (s *zerologSink) Emitf(cat Category, sev Severity, format string, args ...any) {
	s.event(cat, sev).Msgf(format, args...)
}

func (s *zerologSink) event(cat Category, sev Severity) *zerolog.Event {
	var ev *zerolog.Event
	switch sev {
	case Fatal:
		ev = s.logger.Error() // the core never calls os.Exit on our behalf
	case Error:
		ev = s.logger.Error()
	case Warning:
		ev = s.logger.Warn()
	case Display, Log:
		ev = s.logger.Info()
	case Verbose, VeryVerbose:
		ev = s.logger.Debug()
	default:
		ev = s.logger.Info()
	}
	return ev.Str("category", string(cat))
}
