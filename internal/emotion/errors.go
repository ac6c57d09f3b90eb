package emotion

import "errors"

// Client-error sentinels surfaced by the validation layer. The pure
// scoring functions never return these; they belong to callers that
// must reject bad input instead of defaulting it.
var (
	// ErrEmptyText is returned when text is required but empty or
	// whitespace-only.
	ErrEmptyText = errors.New("emotion: text is required")

	// ErrUnknownLabel is returned when a supplied emotion name cannot
	// be normalized to a canonical label in manual-only mode.
	ErrUnknownLabel = errors.New("emotion: unrecognized emotion label")
)
