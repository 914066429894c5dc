package middleware

import "net/http"

// Chain applies middlewares to a handler so that the first middleware in the
// list is the outermost one.
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
