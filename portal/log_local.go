package portal

import (
	"fmt"
	"log"
	"strings"

	"github.com/natefinch/lumberjack"
)

type stdLogger struct {
	*lumberjack.Logger
}

var logger Logger = stdLogger{}

// LogConfig is the [logging] section of the server TOML configuration.
type LogConfig struct {
	Logfile string
	MaxSize int `toml:"max_log_size"`
	MaxAge  int `toml:"max_log_age"`
}

// SetLogger creates a logger that saves to a rotating log file.
func (c *LogConfig) SetLogger() {
	if c == nil || c.Logfile == "" {
		Infof("Sending log messages to stdout since no log file specified.")
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.Logfile)
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(l)
	logger = stdLogger{l}
}

// --- Logger implementation ----

func (slog stdLogger) printf(level, format string, args ...interface{}) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	log.Printf(level+format, args...)
}

// Debugf formats its arguments analogous to fmt.Printf and records the text as a log
// message at Debug level.
func (slog stdLogger) Debugf(format string, args ...interface{}) {
	slog.printf("    DEBUG ", format, args...)
}

func (slog stdLogger) Infof(format string, args ...interface{}) {
	slog.printf("     INFO ", format, args...)
}

func (slog stdLogger) Warningf(format string, args ...interface{}) {
	slog.printf("  WARNING ", format, args...)
}

func (slog stdLogger) Errorf(format string, args ...interface{}) {
	slog.printf("    ERROR ", format, args...)
}

func (slog stdLogger) Criticalf(format string, args ...interface{}) {
	slog.printf(" CRITICAL ", format, args...)
}

func (slog stdLogger) Shutdown() {
	if slog.Logger != nil {
		log.Printf("Closing log file...\n")
		slog.Close()
	}
}
