package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode string
		wantMsg  string
	}{
		{"validation", NewValidationError("title is required", cause), ErrorTypeValidation, CodeValidation, "title is required"},
		{"task not found", NewNotFoundError("task", "abc"), ErrorTypeNotFound, CodeTaskNotFound, "task not found: abc"},
		{"other not found", NewNotFoundError("owner", "u1"), ErrorTypeNotFound, CodeNotFound, "owner not found: u1"},
		{"database", NewDatabaseError("insert task", cause), ErrorTypeDatabase, CodeInternal, "database operation failed: insert task"},
		{"invalid input", NewInvalidInputError("limit", 0, "must be positive"), ErrorTypeInvalidInput, CodeInvalidInput, "invalid input for limit: must be positive"},
		{"timeout", NewTimeoutError("list tasks", "5s"), ErrorTypeTimeout, CodeUnavailable, "operation timed out: list tasks"},
		{"permission", NewPermissionError("delete", "task"), ErrorTypePermission, CodeForbidden, "permission denied for delete on task"},
		{"unauthorized", NewUnauthorizedError("missing token", nil), ErrorTypeUnauthorized, CodeUnauthorized, "missing token"},
		{"conflict", NewConflictError("move task", cause), ErrorTypeConflict, CodeConflict, "conflicting update: move task"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.wantType {
				t.Errorf("type = %v, want %v", tt.err.Type, tt.wantType)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestNewNotFoundError_Context(t *testing.T) {
	err := NewNotFoundError("task", "123")

	resource, ok := err.GetContext("resource")
	if !ok || resource != "task" {
		t.Errorf("NewNotFoundError should set resource context")
	}
	identifier, ok := err.GetContext("identifier")
	if !ok || identifier != "123" {
		t.Errorf("NewNotFoundError should set identifier context")
	}
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original")
	err := WrapError(cause, ErrorTypeDatabase, "wrapped")

	if err.Code != "database" {
		t.Errorf("WrapError code = %v, want database", err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("WrapError should keep the cause reachable")
	}
}

func TestFromContextError(t *testing.T) {
	if got := FromContextError("query", errors.New("other")); got != nil {
		t.Errorf("FromContextError should ignore non-context errors, got %v", got)
	}

	wrapped := fmt.Errorf("exec: %w", context.DeadlineExceeded)
	got := FromContextError("query", wrapped)
	if got == nil || got.Type != ErrorTypeTimeout {
		t.Fatalf("FromContextError = %v, want timeout error", got)
	}
	if !errors.Is(got, context.DeadlineExceeded) {
		t.Errorf("timeout error should wrap the context error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NewNotFoundError("task", "1")
	wrapped := fmt.Errorf("service: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok || got != appErr {
		t.Errorf("AsAppError should unwrap to the original AppError")
	}
	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Errorf("AsAppError should return false for plain errors")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError should be true for wrapped AppError")
	}
	if !IsErrorType(wrapped, ErrorTypeNotFound) {
		t.Errorf("IsErrorType should match through wrapping")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"timeout", NewTimeoutError("q", "1s"), true},
		{"conflict", NewConflictError("move", nil), true},
		{"validation", NewValidationError("bad", nil), false},
		{"plain", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"validation", NewValidationError("title is required", nil), "title is required"},
		{"not found", NewNotFoundError("task", "1"), "task not found: 1"},
		{"database hides cause", NewDatabaseError("insert", errors.New("secret dsn")), "A database error occurred. Please try again."},
		{"timeout", NewTimeoutError("q", "1s"), "The operation timed out. Please try again."},
		{"unauthorized", NewUnauthorizedError("invalid token", nil), "invalid token"},
		{"plain error hidden", errors.New("raw driver error"), "An unexpected error occurred. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetUserMessage(tt.err); got != tt.expected {
				t.Errorf("GetUserMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if got := GetErrorCode(NewNotFoundError("task", "1")); got != CodeTaskNotFound {
		t.Errorf("GetErrorCode() = %v, want %v", got, CodeTaskNotFound)
	}
	if got := GetErrorCode(errors.New("x")); got != CodeUnknown {
		t.Errorf("GetErrorCode() = %v, want %v", got, CodeUnknown)
	}
}

func TestShouldLogError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"validation", NewValidationError("x", nil), false},
		{"not found", NewNotFoundError("task", "1"), false},
		{"unauthorized", NewUnauthorizedError("x", nil), false},
		{"database", NewDatabaseError("x", nil), true},
		{"timeout", NewTimeoutError("x", nil), true},
		{"plain", errors.New("x"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldLogError(tt.err); got != tt.expected {
				t.Errorf("ShouldLogError() = %v, want %v", got, tt.expected)
			}
		})
	}
}
