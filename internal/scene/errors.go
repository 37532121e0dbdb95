package scene

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidScene = errors.New("scene: invalid description")
	ErrUnknownBody  = errors.New("scene: unknown body")
	ErrCycle        = errors.New("scene: dependency cycle")
)

// BodyError reports a problem with one body. It matches both ErrInvalidScene
// and the underlying cause.
type BodyError struct {
	Body string
	Err  error
}

func (e *BodyError) Error() string {
	return fmt.Sprintf("scene: body %q: %v", e.Body, e.Err)
}

func (e *BodyError) Unwrap() []error {
	return []error{ErrInvalidScene, e.Err}
}

func bodyErr(name string, format string, args ...any) error {
	return &BodyError{Body: name, Err: fmt.Errorf(format, args...)}
}
