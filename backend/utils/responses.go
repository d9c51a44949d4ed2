package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the uniform envelope for successful replies.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the uniform envelope for failed replies.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ErrorBody carries the machine-readable kind plus a human message.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Error kinds shared across endpoints.
const (
	KindInvalidInput     = "invalid_input"
	KindUnauthenticated  = "unauthenticated"
	KindForbidden        = "forbidden"
	KindNotFound         = "not_found"
	KindConflict         = "conflict"
	KindStoreUnavailable = "store_unavailable"
	KindInternal         = "internal"
)

// Success writes a success envelope with the given status.
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
	})
}

// SuccessMessage writes a success envelope carrying only a message.
func SuccessMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Message: message,
	})
}

// Fail writes an error envelope with the given status, kind and message.
func Fail(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   ErrorBody{Kind: kind, Message: message},
	})
}

// BadRequest writes a 400 invalid_input error.
func BadRequest(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusBadRequest, KindInvalidInput, message)
}

// Unauthorized writes a 401 unauthenticated error.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusUnauthorized, KindUnauthenticated, message)
}

// NotFound writes a 404 not_found error.
func NotFound(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusNotFound, KindNotFound, message)
}

// Conflict writes a 409 conflict error.
func Conflict(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusConflict, KindConflict, message)
}

// StoreUnavailable writes a 503 store_unavailable error.
func StoreUnavailable(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusServiceUnavailable, KindStoreUnavailable, message)
}

// InternalServerError writes a 500 internal error.
func InternalServerError(c *fiber.Ctx, message string) error {
	return Fail(c, fiber.StatusInternalServerError, KindInternal, message)
}
