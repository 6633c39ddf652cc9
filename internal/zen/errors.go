package zen

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrCourseNotFound    = errors.New("course not found")
	ErrCourseCompleted   = errors.New("course already completed")
	ErrPrerequisite      = errors.New("course prerequisites not met")
	ErrInvalidInput      = errors.New("invalid input")
)

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is matches ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// PrerequisiteError names how many more sessions a course needs.
type PrerequisiteError struct {
	CourseID string
	Required int
	Have     int
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("course %s requires %d sessions, have %d", e.CourseID, e.Required, e.Have)
}

// Is matches ErrPrerequisite.
func (e *PrerequisiteError) Is(target error) bool {
	return target == ErrPrerequisite
}
