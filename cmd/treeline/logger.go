package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger builds the process logger from the environment. Logging goes to
// stderr by default; TREELINE_LOG_FILE redirects it and TREELINE_LOG_LEVEL
// controls verbosity (debug, info, warn, error).
func newLogger() *log.Logger {
	var out io.Writer = os.Stderr
	if path := os.Getenv("TREELINE_LOG_FILE"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600); err == nil {
			out = f
		}
	}

	level := log.WarnLevel
	switch strings.ToLower(os.Getenv("TREELINE_LOG_LEVEL")) {
	case "debug":
		level = log.DebugLevel
	case "info":
		level = log.InfoLevel
	case "error":
		level = log.ErrorLevel
	}

	return log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}
