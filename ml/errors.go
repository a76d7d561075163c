package ml

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks artifact load or startup contract failures.
	ErrConfiguration = errors.New("model configuration error")
	// ErrShapeMismatch marks a feature vector the classifier cannot consume.
	ErrShapeMismatch = errors.New("feature shape mismatch")
)

// ShapeMismatchError reports a vector width or feature index the classifier rejects.
type ShapeMismatchError struct {
	Expected int
	Got      int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("feature shape mismatch: classifier expects %d features, got %d", e.Expected, e.Got)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
