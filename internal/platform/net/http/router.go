package http

import "net/http"

// Handler is the plain handler func modules write
type Handler = func(http.ResponseWriter, *http.Request)

// Router is what modules mount routes on
// AdaptChi is the only implementation; tests use it over a bare chi mux
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)

	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))

	// Mux returns the underlying handler for serving
	Mux() http.Handler
}
