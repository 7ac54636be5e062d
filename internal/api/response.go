package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"todo-list/internal/errors"
	"todo-list/internal/validation"
)

// envelope wraps every response body.
type envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *errorBody  `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"requestId,omitempty"`
}

type errorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (s *Server) respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, envelope{
		Success:   true,
		Data:      data,
		Timestamp: s.now().UTC(),
		RequestID: requestID(c),
	})
}

// handleError renders err as an error envelope. Internal causes never reach
// the client.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := describeError(err)
	if status >= http.StatusInternalServerError {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestID(c),
			"path":       c.Path(),
			"owner":      ownerFrom(c),
		}).Error("request error")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(status)
	} else {
		writeErr = c.JSON(status, envelope{
			Success:   false,
			Error:     &body,
			Timestamp: s.now().UTC(),
			RequestID: requestID(c),
		})
	}
	if writeErr != nil {
		s.logger.WithError(writeErr).Warn("failed to write error response")
	}
}

// describeError maps an error onto an HTTP status and a client-safe body.
func describeError(err error) (int, errorBody) {
	if appErr, ok := errors.AsAppError(err); ok {
		body := errorBody{Code: appErr.Code, Message: errors.GetUserMessage(err)}
		switch appErr.Type {
		case errors.ErrorTypeValidation, errors.ErrorTypeInvalidInput:
			body.Code = errors.CodeValidation
			if ve, ok := validation.AsValidationError(err); ok {
				body.Details = ve.Errors
			}
			return http.StatusBadRequest, body
		case errors.ErrorTypeNotFound:
			return http.StatusNotFound, body
		case errors.ErrorTypeUnauthorized:
			return http.StatusUnauthorized, body
		case errors.ErrorTypePermission:
			return http.StatusForbidden, body
		case errors.ErrorTypeConflict:
			return http.StatusConflict, body
		case errors.ErrorTypeTimeout:
			return http.StatusServiceUnavailable, body
		default:
			body.Code = errors.CodeInternal
			return http.StatusInternalServerError, body
		}
	}

	if ve, ok := validation.AsValidationError(err); ok {
		return http.StatusBadRequest, errorBody{
			Code:    errors.CodeValidation,
			Message: ve.GetUserFriendlyMessage(),
			Details: ve.Errors,
		}
	}

	if timeout := errors.FromContextError("request", err); timeout != nil {
		return http.StatusServiceUnavailable, errorBody{
			Code:    errors.CodeUnavailable,
			Message: errors.GetUserMessage(timeout),
		}
	}

	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code, errorBody{Code: codeForStatus(he.Code), Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, errorBody{
		Code:    errors.CodeInternal,
		Message: errors.GetUserMessage(err),
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return errors.CodeValidation
	case http.StatusUnauthorized:
		return errors.CodeUnauthorized
	case http.StatusForbidden:
		return errors.CodeForbidden
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errors.CodeNotFound
	case http.StatusConflict:
		return errors.CodeConflict
	case http.StatusServiceUnavailable:
		return errors.CodeUnavailable
	}
	if status >= http.StatusInternalServerError {
		return errors.CodeInternal
	}
	return errors.CodeUnknown
}

// sonicSerializer implements echo.JSONSerializer on bytedance/sonic.
type sonicSerializer struct{}

func (sonicSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (sonicSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body").SetInternal(err)
	}
	return nil
}
