// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the terminal error boundary. It is the last stop for
// every request-level failure: errors recorded by handlers (via c.Error),
// panics anywhere downstream, and the router's NoRoute/NoMethod fallbacks all
// end up rendered by the same httperr.Handler, so clients get one consistent,
// content-negotiated error surface.
//
// Design notes:
//   - The boundary never lets an error escape; it is itself the propagation
//     barrier. Only a misconfigured renderer override (a construction-time
//     contract violation inside httperr.New) can abort the process.
//   - Journaling is injected as a function so the middleware does not depend
//     on the persistence layer; a failed journal write is logged and ignored.
package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-error-responder/internal/domain"
	"github.com/tbourn/go-error-responder/internal/httperr"
)

// EventRecorder persists one journal row per handled error. Implementations
// must tolerate concurrent calls.
type EventRecorder func(ctx context.Context, ev *domain.ErrorEvent) error

// BoundaryOptions configure the error boundary.
type BoundaryOptions struct {
	// Handler is the terminal error handler. Required.
	Handler *httperr.Handler
	// DisplayDetails is passed through to the handler on every invocation.
	DisplayDetails bool
	// Record, when non-nil, journals every handled error.
	Record EventRecorder
}

// ErrorBoundary returns the terminal error-handling middleware.
//
// Behavior:
//   - Recovers panics, logs the stack with the request-scoped logger, and
//     treats the panic value as an unclassified error (rendered as 500).
//   - After the chain runs, if handlers recorded errors via c.Error and no
//     response has been written yet, the last recorded error is rendered.
//   - Each handled error increments error_responses_total and, when a
//     recorder is configured, inserts one journal row keyed by request ID.
func ErrorBoundary(opt BoundaryOptions) gin.HandlerFunc {
	if opt.Handler == nil {
		panic("middleware: ErrorBoundary requires a Handler")
	}
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				LoggerFrom(c).Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				respond(c, opt, fmt.Errorf("panic: %v", rec))
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		respond(c, opt, c.Errors.Last().Err)
	}
}

// respond renders err through the terminal handler and performs the
// bookkeeping side effects (metrics, journal).
func respond(c *gin.Context, opt BoundaryOptions, err error) {
	if c.Writer.Written() {
		// A partial body is already on the wire; the status cannot change.
		c.Abort()
		return
	}

	opt.Handler.Handle(c, err, opt.DisplayDetails)

	status := c.Writer.Status()
	contentType := c.Writer.Header().Get("Content-Type")
	ObserveErrorResponse(status, contentType)

	if opt.Record == nil {
		return
	}
	ev := &domain.ErrorEvent{
		RequestID:   RequestIDFrom(c),
		Method:      c.Request.Method,
		Path:        c.Request.URL.Path,
		Status:      status,
		ContentType: contentType,
		Message:     httperr.Title(err),
		Detail:      httperr.PlainTextRenderer{}.Render(err, true),
	}
	if rerr := opt.Record(c.Request.Context(), ev); rerr != nil {
		LoggerFrom(c).Error().Err(rerr).Msg("error journal write failed")
	}
}
