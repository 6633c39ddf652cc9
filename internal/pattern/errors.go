package pattern

import (
	"errors"
	"fmt"
)

// ErrUnknownIntention is matched by every UnknownIntentionError.
var ErrUnknownIntention = errors.New("unknown intention")

// ErrInvalidPattern is matched by every ConfigurationError.
var ErrInvalidPattern = errors.New("invalid breathing pattern")

// ConfigurationError reports a pattern that violates the duration rules.
type ConfigurationError struct {
	Key    string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("invalid breathing pattern: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid breathing pattern %q: %s %s", e.Key, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidPattern) match.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidPattern
}

// UnknownIntentionError is returned by Catalog.Get for a missing key.
type UnknownIntentionError struct {
	Key string
}

func (e *UnknownIntentionError) Error() string {
	return fmt.Sprintf("unknown intention %q", e.Key)
}

// Is lets errors.Is(err, ErrUnknownIntention) match.
func (e *UnknownIntentionError) Is(target error) bool {
	return target == ErrUnknownIntention
}
