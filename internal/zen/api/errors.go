// Package api serves the Zen gamification REST API with gin.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zjrosen/bloom/internal/zen"
)

// AppError is the JSON body of every error response.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
}

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeNotFound      = "NOT_FOUND"
	CodeForbidden     = "FORBIDDEN"
	CodeConflict      = "CONFLICT"
	CodeInternalError = "INTERNAL_ERROR"
	CodeBadRequest    = "BAD_REQUEST"
)

func Validation(message, details string) *AppError {
	return &AppError{Code: CodeValidation, Message: message, Details: details, Status: http.StatusBadRequest}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found", Status: http.StatusNotFound}
}

func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Status: http.StatusForbidden}
}

func Conflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func Internal(message, details string) *AppError {
	return &AppError{Code: CodeInternalError, Message: message, Details: details, Status: http.StatusInternalServerError}
}

func BadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

// FromError maps service errors onto HTTP errors.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *zen.ValidationError
	var perr *zen.PrerequisiteError
	switch {
	case errors.As(err, &verr):
		return Validation("invalid request", verr.Error())
	case errors.Is(err, zen.ErrUserNotFound):
		return NotFound("user")
	case errors.Is(err, zen.ErrCourseNotFound):
		return NotFound("course")
	case errors.Is(err, zen.ErrDuplicateUsername):
		return Conflict("username already taken")
	case errors.Is(err, zen.ErrCourseCompleted):
		return Conflict("course already completed")
	case errors.As(err, &perr):
		return &AppError{Code: CodeForbidden, Message: "course prerequisites not met", Details: perr.Error(), Status: http.StatusForbidden}
	default:
		return Internal("internal server error", err.Error())
	}
}
