package session

import (
	"errors"
	"fmt"
)

// ErrAlreadyActive is matched by every AlreadyActiveError.
var ErrAlreadyActive = errors.New("a breathing session is already active")

// AlreadyActiveError is returned by Start while another session runs. The
// running session is left untouched.
type AlreadyActiveError struct {
	Intention string
}

func (e *AlreadyActiveError) Error() string {
	return fmt.Sprintf("breathing session %q is already active", e.Intention)
}

// Is lets errors.Is(err, ErrAlreadyActive) match.
func (e *AlreadyActiveError) Is(target error) bool {
	return target == ErrAlreadyActive
}
