package sim

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("sim: entity has no such component")
	ErrInvalidScale = errors.New("sim: time scale must be finite and non-negative")
)

func notFound(cause error) error {
	return fmt.Errorf("%w: %w", ErrNotFound, cause)
}
