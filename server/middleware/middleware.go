package middleware

import "net/http"

// Middleware wraps an http.Handler. The server applies its stack around
// the whole gin engine, so every route including unmatched ones passes
// through it.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware. The first one is the outermost: it runs first
// on the request and last on the response.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
