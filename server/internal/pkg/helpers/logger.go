package helpers

import (
	"log"
	"os"
)

// Logger provides simplified logging with prefixes
type Logger struct {
	prefix string
	debug  bool
}

// NewLogger creates a new logger with a prefix. Debug lines are printed only
// when SLIDELAB_DEBUG is set.
func NewLogger(prefix string) *Logger {
	_, debug := os.LookupEnv("SLIDELAB_DEBUG")
	return &Logger{prefix: "[" + prefix + "]", debug: debug}
}

// Info logs an info message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.printf("INFO", msg, args)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.printf("WARN", msg, args)
}

// Error logs an error message
func (l *Logger) Error(msg string, err error, args ...interface{}) {
	if len(args) == 0 {
		log.Printf("%s ERROR: %s - %v", l.prefix, msg, err)
		return
	}
	log.Printf("%s ERROR: %s - %v %v", l.prefix, msg, err, args)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.printf("DEBUG", msg, args)
}

func (l *Logger) printf(level, msg string, args []interface{}) {
	if len(args) == 0 {
		log.Printf("%s %s: %s", l.prefix, level, msg)
		return
	}
	log.Printf("%s %s: %s %v", l.prefix, level, msg, args)
}
