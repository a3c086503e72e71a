package logging

import (
	"github.com/rs/zerolog"
)

// Component derives a sub-logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}
