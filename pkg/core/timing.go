package core

import (
	"fmt"
	"time"
)

// DefaultLogger implements Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// Timing measures a labelled phase and reports its elapsed milliseconds.
// The emitted "<name> took <n>ms" lines are a stable diagnostic contract.
type Timing struct {
	name   string
	start  time.Time
	logger Logger
}

// NewTiming starts timing a named phase
func NewTiming(name string, logger Logger) *Timing {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Timing{name: name, start: time.Now(), logger: logger}
}

// Stop reports the elapsed time for the phase
func (t *Timing) Stop() {
	t.logger.Printf("%s took %dms\n", t.name, time.Since(t.start).Milliseconds())
}

// Time runs fn under a named timing and reports when it returns
func Time[T any](name string, logger Logger, fn func() T) T {
	t := NewTiming(name, logger)
	defer t.Stop()
	return fn()
}
