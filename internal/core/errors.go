package core

import (
	"errors"
	"fmt"
)

// Predefined errors returned by statement builders.
var (
	// ErrInvalidInput is returned for malformed conditions, mismatched insert rows,
	// non-positive limits and other caller mistakes.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupportedDialect is returned in strict mode when the dialect is not registered.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrUnsupportedFeature is returned when the dialect policy has no rendering for a feature.
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrUnsafeInput is returned in strict mode when an identifier or operator looks like an injection.
	ErrUnsafeInput = errors.New("unsafe input")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}

// UnsupportedFeatureError describes a feature the selected dialect cannot render.
type UnsupportedFeatureError struct {
	Dialect string
	Feature string
	Hint    string
}

func (e *UnsupportedFeatureError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s is not supported: %s", e.Dialect, e.Feature, e.Hint)
	}
	return fmt.Sprintf("%s: %s is not supported", e.Dialect, e.Feature)
}

// Unwrap lets errors.Is match ErrUnsupportedFeature.
func (e *UnsupportedFeatureError) Unwrap() error {
	return ErrUnsupportedFeature
}

func unsupported(dialect, feature, hint string) error {
	return &UnsupportedFeatureError{Dialect: dialect, Feature: feature, Hint: hint}
}

// invalidf formats an ErrInvalidInput with detail.
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
