package logging

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	FormatText    = "text"
	FormatJson    = "json"
	FormatMessage = "message"
)

var validLogFormats = map[string]bool{
	FormatText:    true,
	FormatJson:    true,
	FormatMessage: true,
}

// Config defines command line logging configuration.
// Logs are always written to stderr; stdout is reserved for generated output.
type Config struct {
	// Log level, e.g. INFO, ERROR etc
	Level string
	// Logging format, one of text, json or message
	Format string
}

func validate(c Config) error {
	if _, err := parseLogLevel(c.Level); err != nil {
		return err
	}
	return validateLogFormat(c.Format)
}

func validateLogFormat(f string) error {
	if _, ok := validLogFormats[f]; !ok {
		return errors.Errorf("unknown log format: %s. Valid formats are text, json and message", f)
	}
	return nil
}

func parseLogLevel(level string) (log.Level, error) {
	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return log.InfoLevel, errors.Errorf("unknown level: %s", level)
	}
	return l, nil
}
