package sse

import (
	"net/http"
	"strings"
)

// Negotiate reports whether the request's Accept header admits mediaType.
// An absent header accepts everything; wildcard ranges (*/* and type/*)
// match, media type parameters are ignored.
func Negotiate(r *http.Request, mediaType string) bool {
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}

	major, _, _ := strings.Cut(mediaType, "/")
	for _, part := range strings.Split(accept, ",") {
		mt, _, _ := strings.Cut(part, ";")
		mt = strings.TrimSpace(mt)
		if mt == mediaType || mt == "*/*" || mt == major+"/*" {
			return true
		}
	}
	return false
}
