package http

import "github.com/gofiber/fiber/v2"

// APIError is the error body of pin creation and other JSON endpoints.
type APIError struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusResponse is the body of delete responses, success or not.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Error:     message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, msg)
}

// errNotFound returns a 404 status response.
func errNotFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(StatusResponse{Status: "error", Message: msg})
}

// statusError returns a status response with an arbitrary code.
func statusError(c *fiber.Ctx, code int, msg string) error {
	return c.Status(code).JSON(StatusResponse{Status: "error", Message: msg})
}
