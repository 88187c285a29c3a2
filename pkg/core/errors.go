package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrRaceCondition matches every *RaceConditionDefect.
	ErrRaceCondition = errors.New("race condition defect")

	// ErrCompletionTimeout is returned when a batch of pending operations
	// does not complete within the configured completion timeout.
	ErrCompletionTimeout = errors.New("completion timeout")
)

// ConfigurationError reports unusable run parameters. It is fatal: no
// partial run is attempted.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConfigErrorf builds a *ConfigurationError from a format string.
func ConfigErrorf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// RaceConditionDefect reports buffers that were consumed before the
// operation owning them was confirmed complete.
type RaceConditionDefect struct {
	Hazards []Hazard
}

func (e *RaceConditionDefect) Error() string {
	parts := make([]string, 0, len(e.Hazards))
	for _, h := range e.Hazards {
		parts = append(parts, h.String())
	}
	return fmt.Sprintf("race condition defect: %d unconfirmed operation(s) consumed: %s",
		len(e.Hazards), strings.Join(parts, "; "))
}

func (e *RaceConditionDefect) Is(target error) bool {
	return target == ErrRaceCondition
}
