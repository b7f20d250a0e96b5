package particle

import "errors"

// Domain errors for field construction and configuration.
var (
	// ErrInvalidViewport indicates a viewport with negative or NaN dimensions.
	ErrInvalidViewport = errors.New("particle: invalid viewport dimensions")

	// ErrInvalidConfig indicates count, breakpoint or threshold values out of range.
	ErrInvalidConfig = errors.New("particle: invalid field configuration")
)

// ViewportError wraps an error with the offending dimensions.
type ViewportError struct {
	Width, Height float64
	Wrapped       error
}

func (e *ViewportError) Error() string {
	return e.Wrapped.Error()
}

func (e *ViewportError) Unwrap() error {
	return e.Wrapped
}
