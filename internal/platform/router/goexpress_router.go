package router

import (
	"net/http"

	"github.com/ferdiebergado/goexpress"
)

type goexpressRouter struct {
	handler *goexpress.Router

	// set on groups only; the root relies on goexpress for its global chain
	prefix      string
	middlewares []Middleware
	group       bool
}

var _ Router = (*goexpressRouter)(nil)

//nolint:ireturn //Callers depend on the Router abstraction only.
func NewGoexpressRouter() Router {
	return &goexpressRouter{
		handler: goexpress.New(),
	}
}

// chain returns the group middlewares followed by the route middlewares.
func (r *goexpressRouter) chain(middlewares []Middleware) []Middleware {
	if len(r.middlewares) == 0 {
		return middlewares
	}

	mws := make([]Middleware, 0, len(r.middlewares)+len(middlewares))
	mws = append(mws, r.middlewares...)
	return append(mws, middlewares...)
}

func (r *goexpressRouter) Get(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Get(r.prefix+pattern, handler, r.chain(middlewares)...)
}

func (r *goexpressRouter) Post(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Post(r.prefix+pattern, handler, r.chain(middlewares)...)
}

func (r *goexpressRouter) Put(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Put(r.prefix+pattern, handler, r.chain(middlewares)...)
}

func (r *goexpressRouter) Patch(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Patch(r.prefix+pattern, handler, r.chain(middlewares)...)
}

func (r *goexpressRouter) Delete(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Delete(r.prefix+pattern, handler, r.chain(middlewares)...)
}

func (r *goexpressRouter) Options(pattern string, handler http.HandlerFunc, middlewares ...Middleware) {
	r.handler.Options(r.prefix+pattern, handler, r.chain(middlewares)...)
}

func (r *goexpressRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// Use adds a global middleware on the root router. On a group it only
// applies to routes registered on the group afterwards.
func (r *goexpressRouter) Use(middleware Middleware) {
	if r.group {
		r.middlewares = append(r.middlewares, middleware)
		return
	}
	r.handler.Use(middleware)
}

// Group registers routes on a sub router sharing the parent's mux. The
// global chain is applied once by the root's ServeHTTP, so only the
// group's own middlewares wrap the grouped routes.
func (r *goexpressRouter) Group(prefix string, fn func(r Router), middlewares ...Middleware) {
	gr := &goexpressRouter{
		handler:     r.handler.SubRouter(),
		prefix:      r.prefix + prefix,
		middlewares: append([]Middleware(nil), r.chain(middlewares)...),
		group:       true,
	}

	fn(gr)
}
