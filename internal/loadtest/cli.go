package loadtest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/mergington/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends tool output to stdout and, when logFile is set, to that file too.
func SetupLogging(logFile, format string) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWithWriter(w, format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// ShowHelp prints usage information for the load tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Mergington Signup Load Tool
===========================

Signs up many unique students concurrently, checks that duplicates are
refused and every roster entry appears exactly once, then removes them all
and checks nothing is left behind.

Usage:
  go run ./cmd/signup-load [options]

Options:
  -url string        Base URL of the service (default "http://localhost:8000")
  -signups int       Number of unique signups (default 1000)
  -workers int       Number of concurrent workers (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 10s)
  -output string     Write generated signups to this JSON file
  -log string        Also write logs to this file
  -format string     Log format: text or json (default "text")
  -verbose           Log every failed request
  -help              Show this help message
`)
}
