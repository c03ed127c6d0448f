package feed

import (
	"errors"
	"fmt"

	"birdnest/pkg/platform/sentinel"
)

// ErrorCategory defines the normalized failure taxonomy for upstream calls.
type ErrorCategory string

const (
	// ErrorNetwork indicates the request never produced a response
	ErrorNetwork ErrorCategory = "network"

	// ErrorUpstream indicates the upstream answered with a non-success status
	ErrorUpstream ErrorCategory = "upstream"

	// ErrorParse indicates the upstream returned a malformed document
	ErrorParse ErrorCategory = "parse"

	// ErrorNotFound indicates the requested pilot does not exist
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorUnknown is reported for errors that did not come from this package
	ErrorUnknown ErrorCategory = "unknown"
)

// FeedError wraps upstream failures with a normalized category.
type FeedError struct {
	Category   ErrorCategory
	Source     string // "drones", "pilots" or "replay"
	Message    string
	Underlying error
}

func (e *FeedError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("feed %s [%s]: %s: %v", e.Source, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("feed %s [%s]: %s", e.Source, e.Category, e.Message)
}

func (e *FeedError) Unwrap() error {
	return e.Underlying
}

// NewFeedError creates a categorized feed error. Without an underlying
// error, not-found wraps sentinel.ErrNotFound and upstream failures wrap
// sentinel.ErrUnavailable so callers can use errors.Is.
func NewFeedError(category ErrorCategory, source, message string, underlying error) *FeedError {
	if underlying == nil {
		switch category {
		case ErrorNotFound:
			underlying = sentinel.ErrNotFound
		case ErrorUpstream:
			underlying = sentinel.ErrUnavailable
		}
	}
	return &FeedError{
		Category:   category,
		Source:     source,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the error category from an error chain.
func GetCategory(err error) ErrorCategory {
	var fe *FeedError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return ErrorUnknown
}
