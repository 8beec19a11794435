// Renderers serialize a caught error into one of the supported error
// representations. Each renderer is stateless and safe for concurrent use.
//
// Conventions:
//   - Without displayDetails, only a generic title/description derived from
//     the error's HTTP classification is emitted — never the raw message of an
//     unclassified error, which may leak internals.
//   - With displayDetails, the full cause chain (Go type + message per link)
//     is included.
//   - The plain-text rendering doubles as the diagnostic log line written by
//     the handler, so it always spells out the chain when details are on.
package httperr

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

// Renderer turns a caught error into a response body. displayDetails controls
// whether diagnostic internals (messages, cause chain) appear in the output.
//
// An embedding application may supply its own Renderer to the handler; any
// non-nil value satisfies the contract by construction.
type Renderer interface {
	Render(err error, displayDetails bool) string
}

// RendererFor returns the renderer for a negotiated media type. The mapping
// is a closed table: JSON and the two XML types have dedicated renderers,
// text/plain has its own, and everything else (including text/html and any
// unrecognised value) falls back to HTML.
func RendererFor(contentType string) Renderer {
	switch contentType {
	case MIMEApplicationJSON:
		return JSONRenderer{}
	case MIMEApplicationXML, MIMETextXML:
		return XMLRenderer{}
	case MIMETextPlain:
		return PlainTextRenderer{}
	default:
		return HTMLRenderer{}
	}
}

// Title derives the client-safe headline for an error. HTTP-aware errors
// use their status text; anything else is a generic application error.
func Title(err error) string {
	if sc, ok := AsStatusCoder(err); ok {
		if txt := http.StatusText(sc.StatusCode()); txt != "" {
			return txt
		}
	}
	return "Application Error"
}

// errorDescription is the generic, always-safe body line shown when details
// are suppressed.
func errorDescription(err error) string {
	if _, ok := AsStatusCoder(err); ok {
		return "The application could not process your request."
	}
	return "An unexpected error has occurred. Sorry for the temporary inconvenience."
}

// causeChain flattens err and its wrapped causes into (type, message) pairs,
// outermost first.
func causeChain(err error) []errorDetail {
	var out []errorDetail
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, errorDetail{
			Type:    fmt.Sprintf("%T", e),
			Message: e.Error(),
		})
	}
	return out
}

// errorDetail is one link of the rendered cause chain.
type errorDetail struct {
	Type    string `json:"type" xml:"type"`
	Message string `json:"message" xml:"message"`
}

// JSONRenderer emits an application/json error envelope.
type JSONRenderer struct{}

// Render implements Renderer.
func (JSONRenderer) Render(err error, displayDetails bool) string {
	env := struct {
		Message string        `json:"message"`
		Error   []errorDetail `json:"error,omitempty"`
	}{Message: Title(err)}

	if displayDetails {
		env.Error = causeChain(err)
	}

	b, merr := json.Marshal(env)
	if merr != nil {
		// The envelope is marshal-safe by construction; keep a fallback anyway.
		return `{"message":"Application Error"}`
	}
	return string(b)
}

// XMLRenderer emits an application/xml (or text/xml) error document.
type XMLRenderer struct{}

// Render implements Renderer.
func (XMLRenderer) Render(err error, displayDetails bool) string {
	env := struct {
		XMLName xml.Name      `xml:"error"`
		Message string        `xml:"message"`
		Causes  []errorDetail `xml:"exception,omitempty"`
	}{Message: Title(err)}

	if displayDetails {
		env.Causes = causeChain(err)
	}

	b, merr := xml.Marshal(env)
	if merr != nil {
		return "<error><message>Application Error</message></error>"
	}
	return xml.Header + string(b)
}

// PlainTextRenderer emits a text/plain rendering. With details on, its output
// is reused verbatim as the diagnostic log line.
type PlainTextRenderer struct{}

// Render implements Renderer.
func (PlainTextRenderer) Render(err error, displayDetails bool) string {
	var b strings.Builder
	b.WriteString(Title(err))

	if !displayDetails {
		b.WriteString("\n")
		b.WriteString(errorDescription(err))
		return b.String()
	}

	for i, d := range causeChain(err) {
		if i == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString("\nCaused by:\n")
		}
		fmt.Fprintf(&b, "Type: %s\nMessage: %s", d.Type, d.Message)
	}
	return b.String()
}

// htmlPage is the fixed shell for HTML error responses. Fields are escaped by
// html/template.
var htmlPage = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<title>{{.Title}}</title>
	<style>body{margin:0 auto;max-width:40em;padding:2em;font-family:Helvetica,Arial,sans-serif}</style>
</head>
<body>
	<h1>{{.Title}}</h1>
	<p>{{.Description}}</p>
{{- range .Causes}}
	<h2>Details</h2>
	<dl><dt>Type</dt><dd>{{.Type}}</dd><dt>Message</dt><dd>{{.Message}}</dd></dl>
{{- end}}
</body>
</html>
`))

// HTMLRenderer emits a small self-contained text/html error page. It is the
// default for unrecognised Accept values.
type HTMLRenderer struct{}

// Render implements Renderer.
func (HTMLRenderer) Render(err error, displayDetails bool) string {
	data := struct {
		Title       string
		Description string
		Causes      []errorDetail
	}{
		Title:       Title(err),
		Description: errorDescription(err),
	}
	if displayDetails {
		data.Causes = causeChain(err)
	}

	var b strings.Builder
	if terr := htmlPage.Execute(&b, data); terr != nil {
		return "<html><body><h1>Application Error</h1></body></html>"
	}
	return b.String()
}
