package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/careaxis/hms/pkg/respond"
)

// RequestTimeout bounds every request with a context deadline. A handler
// that outlives the deadline gets its context cancelled and the client
// receives a 504 envelope; slow report queries must derive their own budget
// from the request context rather than block a worker indefinitely.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			done := make(chan error, 1)
			go func() {
				// A panic here would otherwise escape the Recovery
				// middleware, which runs on the original goroutine.
				defer func() {
					if r := recover(); r != nil {
						done <- fmt.Errorf("handler panic: %v", r)
					}
				}()
				done <- next(c)
			}()

			select {
			case err := <-done:
				return err
			case <-ctx.Done():
				if ctx.Err() != context.DeadlineExceeded {
					return ctx.Err()
				}
				if c.Response().Committed {
					return nil
				}
				return respond.Fail(c, http.StatusGatewayTimeout,
					"request processing exceeded the allowed time limit")
			}
		}
	}
}
