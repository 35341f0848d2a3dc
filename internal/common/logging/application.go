package logging

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

const RFC3339Milli = "2006-01-02T15:04:05.000Z07:00"

// ConfigureCommandLineLogging sets up the standard logrus logger for a command line tool:
// text output on stderr at info level.
func ConfigureCommandLineLogging() {
	_ = ConfigureLogging(Config{Level: "info", Format: FormatText}, os.Stderr)
}

// ConfigureLogging applies the given configuration to the standard logrus logger.
func ConfigureLogging(config Config, out io.Writer) error {
	if err := validate(config); err != nil {
		return err
	}
	level, _ := parseLogLevel(config.Level)

	log.SetLevel(level)
	log.SetOutput(out)
	log.SetFormatter(formatterFor(config.Format))
	log.StandardLogger().ReplaceHooks(make(log.LevelHooks))
	log.AddHook(NewPrometheusHook())
	return nil
}

func formatterFor(format string) log.Formatter {
	switch format {
	case FormatJson:
		return &log.JSONFormatter{TimestampFormat: RFC3339Milli}
	case FormatMessage:
		return &CommandLineFormatter{}
	default:
		return &log.TextFormatter{FullTimestamp: true, TimestampFormat: RFC3339Milli}
	}
}
