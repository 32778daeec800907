package server

import (
	"net/http"
)

// CallbackRouter implements [Router] on an [http.ServeMux] with method-qualified patterns.
//
// Requests for /favicon.ico are answered with 204 so browsers opening the callback page don't
// produce noise in the log.
type CallbackRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewCallbackRouter creates an empty [CallbackRouter].
func NewCallbackRouter() *CallbackRouter {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return &CallbackRouter{mux: mux}
}

// Use appends middleware. The first middleware added sees the request first.
//
// Only routes registered after the call are wrapped.
func (r *CallbackRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path. Other methods on path get 405.
func (r *CallbackRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(method+" "+path, r.wrap(handler))
}

// Handler registers handler for GET on each of its routes.
func (r *CallbackRouter) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(http.MethodGet+" "+route, wrapped)
	}
}

// ServeHTTP implements [http.Handler].
func (r *CallbackRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *CallbackRouter) wrap(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
