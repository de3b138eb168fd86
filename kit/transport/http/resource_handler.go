package http

import "net/http"

// ResourceHandler is an HTTP handler for a resource, mounted at Prefix.
type ResourceHandler interface {
	Prefix() string
	http.Handler
}
