// Content negotiation and status resolution for error responses.
//
// The negotiation here is deliberately narrow: the Accept header is split on
// commas and tokens are compared verbatim against the supported set — no
// whitespace trimming, no q= weighting, no wildcard matching. Error responses
// do not warrant full RFC 9110 negotiation, and downstream consumers depend on
// this exact tie-break behavior; do not "fix" it.
package httperr

import "strings"

// Media types the error handler can serve. Order defines tie-break precedence.
// This set is fixed at compile time.
var supportedMediaTypes = []string{
	MIMEApplicationJSON,
	MIMEApplicationXML,
	MIMETextXML,
	MIMETextHTML,
	MIMETextPlain,
}

// MIME constants for the supported error representations.
const (
	MIMEApplicationJSON = "application/json"
	MIMEApplicationXML  = "application/xml"
	MIMETextXML         = "text/xml"
	MIMETextHTML        = "text/html"
	MIMETextPlain       = "text/plain"
)

// StatusCode resolves the response status for a caught error.
//
// Rules, in order:
//   - OPTIONS requests (exact, uppercase) always resolve to 200 so that
//     preflight-style probes never surface as failures;
//   - errors carrying a StatusCode() are taken verbatim;
//   - everything else is an unclassified 500.
func StatusCode(method string, err error) int {
	if method == "OPTIONS" {
		return 200
	}
	if sc, ok := AsStatusCoder(err); ok {
		return sc.StatusCode()
	}
	return 500
}

// ContentType selects the response media type for the raw Accept header value.
//
// The header is split on "," and tokens are intersected, in header order,
// against the supported set. The first match wins, except that text/plain is
// never preferred when at least one other supported type was also accepted.
// When nothing matches, a "+json"/"+xml" structured-syntax suffix anywhere in
// the header selects application/json or application/xml. The default is
// text/html.
func ContentType(accept string) string {
	selected := intersect(accept)

	if len(selected) > 0 {
		ct := selected[0]
		// Plain text loses to any other acceptable representation.
		if ct == MIMETextPlain && len(selected) > 1 {
			ct = selected[1]
		}
		return ct
	}

	if strings.Contains(accept, "+json") {
		return MIMEApplicationJSON
	}
	if strings.Contains(accept, "+xml") {
		return MIMEApplicationXML
	}

	return MIMETextHTML
}

// intersect returns the supported media types present as verbatim tokens in
// the Accept header, ordered as they appeared in the header. Duplicate tokens
// collapse to their first occurrence.
func intersect(accept string) []string {
	supported := make(map[string]struct{}, len(supportedMediaTypes))
	for _, mt := range supportedMediaTypes {
		supported[mt] = struct{}{}
	}

	var out []string
	for _, token := range strings.Split(accept, ",") {
		if _, ok := supported[token]; !ok {
			continue
		}
		delete(supported, token)
		out = append(out, token)
	}
	return out
}
