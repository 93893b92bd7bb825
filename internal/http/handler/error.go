package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"projdocs/internal/http/middleware"
	"projdocs/internal/provision"
	"projdocs/internal/service"
	"projdocs/internal/store"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// writeServiceError maps repository errors onto the error envelope.
// Validation messages are safe to echo; everything else gets a generic message.
func writeServiceError(c *fiber.Ctx, err error) error {
	var (
		folderErr *service.FolderProvisioningError
		provErr   *provision.ProvisioningError
		uploadErr *service.UploadError
		copyErr   *service.CopyError
	)
	switch {
	case errors.Is(err, service.ErrInvalidArgument),
		errors.Is(err, service.ErrIDRequired),
		errors.Is(err, service.ErrProjectRequired),
		errors.Is(err, service.ErrPathRequired),
		errors.Is(err, service.ErrReaderNil),
		errors.Is(err, service.ErrClientRequired),
		errors.Is(err, store.ErrInvalidPath):
		return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, store.ErrLibraryNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "resource not found")
	case errors.Is(err, store.ErrCheckedOut):
		return writeError(c, fiber.StatusConflict, "CHECKED_OUT", "file is checked out")
	case errors.Is(err, store.ErrNotCheckedOut):
		return writeError(c, fiber.StatusConflict, "NOT_CHECKED_OUT", "file is not checked out")
	case errors.Is(err, store.ErrAlreadyExists):
		return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "resource already exists")
	case errors.As(err, &folderErr), errors.As(err, &provErr):
		return writeError(c, fiber.StatusServiceUnavailable, "PROVISIONING_FAILED", "repository is not provisioned")
	case errors.As(err, &uploadErr):
		return writeError(c, fiber.StatusBadGateway, "UPLOAD_FAILED", "upload failed at "+uploadErr.Stage)
	case errors.As(err, &copyErr):
		return writeError(c, fiber.StatusBadGateway, "COPY_FAILED", copyErr.Error())
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
