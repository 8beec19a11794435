// The terminal error handler. Everything upstream (handlers, middleware,
// route fallbacks) funnels caught errors here; nothing propagates past it.
package httperr

import (
	"reflect"

	"github.com/gin-gonic/gin"
)

// logNotice is appended (between newlines) to every diagnostic log line,
// pointing operators at the in-band detail switch.
const logNotice = `View in rendered output by enabling the "displayErrorDetails" setting.`

// Options configure a Handler at construction. All fields are read-only after
// New; a Handler is safe for concurrent use.
type Options struct {
	// LogErrors enables the one-line diagnostic write per handled error.
	LogErrors bool
	// Sink receives diagnostic lines when LogErrors is set. Defaults to a
	// ZerologSink on the global logger.
	Sink LogSink
	// Renderer, when non-nil, overrides negotiated renderer dispatch for
	// every response regardless of content type.
	Renderer Renderer
}

// Handler resolves status, content type, and renderer for a caught error and
// writes the finished response. It is the error boundary of the service:
// every request-level failure is absorbed into a response here.
type Handler struct {
	logErrors bool
	sink      LogSink
	override  Renderer
	hasOver   bool
}

// New constructs a Handler from opts.
//
// Supplying a renderer override that is nil at the interface's dynamic value
// is a programming error by the embedding application, not a request-time
// condition: New panics rather than degrading to a 500 later.
func New(opts Options) *Handler {
	h := &Handler{
		logErrors: opts.LogErrors,
		sink:      opts.Sink,
	}
	if h.sink == nil {
		h.sink = ZerologSink{}
	}
	if opts.Renderer != nil {
		if !validRenderer(opts.Renderer) {
			panic("httperr: renderer override does not satisfy the Renderer contract")
		}
		h.override = opts.Renderer
		h.hasOver = true
	}
	return h
}

// Handle converts err into the response for c. displayDetails controls
// whether diagnostic internals appear in the body; when logging is enabled
// the full detail always goes to the sink, with a notice pointing at the
// detail switch.
//
// Resolution order: status, content type, renderer, log write, body, Allow
// header (method-not-allowed errors only), then the final write. The result
// is byte-identical across repeated invocations with the same inputs; the log
// write is the only side effect.
func (h *Handler) Handle(c *gin.Context, err error, displayDetails bool) {
	status := StatusCode(c.Request.Method, err)
	contentType := ContentType(c.Request.Header.Get("Accept"))

	renderer := h.override
	if !h.hasOver {
		renderer = RendererFor(contentType)
	}

	if h.logErrors {
		h.sink.Write(PlainTextRenderer{}.Render(err, true) + "\n" + logNotice + "\n")
	}

	body := renderer.Render(err, displayDetails)

	if mna, ok := AsMethodNotAllowed(err); ok {
		c.Header("Allow", mna.AllowedMethods())
	}

	c.Data(status, contentType, []byte(body))
	c.Abort()
}

// validRenderer guards against interface values whose dynamic value is a nil
// pointer, the one renderer misconfiguration Go's type system cannot reject
// at compile time.
func validRenderer(r Renderer) bool {
	if r == nil {
		return false
	}
	rv := reflect.ValueOf(r)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func:
		return !rv.IsNil()
	}
	return true
}
