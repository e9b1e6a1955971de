// Package respond defines the {success, message, data} envelope used by the
// RPC-style endpoints (auth, uploads, presigned retrieval).
package respond

import "github.com/labstack/echo/v4"

// Envelope is the uniform response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// OK writes a success envelope.
func OK(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes a failure envelope. It is a normal response, not an error:
// "not logged in" and similar outcomes are expected states.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}
