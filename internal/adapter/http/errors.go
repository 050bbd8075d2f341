package http

import (
	"errors"

	"resume-builder/internal/adapter/localstore"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/service"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if s, ok := c.Locals(RequestIDLocalKey).(string); ok {
		return s
	}
	return ""
}

func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// statusOf maps domain errors to a status and a stable code. Messages of
// local validation errors are safe to show; everything else is generic.
func statusOf(err error) (int, string, bool) {
	switch {
	case errors.Is(err, usecase.ErrInvalidFieldPath):
		return fiber.StatusBadRequest, "INVALID_FIELD_PATH", true
	case errors.Is(err, usecase.ErrIndexOutOfRange):
		return fiber.StatusBadRequest, "INDEX_OUT_OF_RANGE", true
	case errors.Is(err, usecase.ErrEmptyInput):
		return fiber.StatusBadRequest, "EMPTY_INPUT", true
	case errors.Is(err, usecase.ErrInvalidSectionKind),
		errors.Is(err, usecase.ErrItemKindMismatch),
		errors.Is(err, model.ErrInvalidDocument):
		return fiber.StatusBadRequest, "INVALID_BODY", true
	case errors.Is(err, service.ErrUnauthorized):
		return fiber.StatusForbidden, "UNAUTHORIZED", false
	case errors.Is(err, service.ErrNotFound), errors.Is(err, localstore.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND", false
	case errors.Is(err, export.ErrCaptureUnavailable):
		return fiber.StatusServiceUnavailable, "CAPTURE_UNAVAILABLE", false
	case errors.Is(err, export.ErrEncodeFailed):
		return fiber.StatusInternalServerError, "EXPORT_FAILED", false
	case errors.Is(err, export.ErrSaveUnavailable):
		return fiber.StatusServiceUnavailable, "SAVE_UNAVAILABLE", false
	}
	return fiber.StatusInternalServerError, "INTERNAL_ERROR", false
}

var defaultMessages = map[string]string{
	"UNAUTHORIZED":        "not allowed",
	"NOT_FOUND":           "resource not found",
	"CAPTURE_UNAVAILABLE": "the resume could not be captured",
	"EXPORT_FAILED":       "the PDF could not be produced",
	"SAVE_UNAVAILABLE":    "the PDF could not be saved",
	"INTERNAL_ERROR":      "internal server error",
}

// fail writes err as a standardized error response.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status, code, expose := statusOf(err)
	if code == "UNAUTHORIZED" && identity(c).IsAnonymous() {
		status = fiber.StatusUnauthorized
	}
	msg := defaultMessages[code]
	if expose {
		msg = err.Error()
	}
	if status >= fiber.StatusInternalServerError {
		h.log.Error("request failed", "request_id", requestIDFromCtx(c), "path", c.Path(), "error", err)
	}
	return writeError(c, status, code, msg)
}

// ErrorHandler standardizes errors that escape handlers, including fiber's
// own 404 and 405.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "INVALID_BODY", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "INVALID_BODY", "request body too large")
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
