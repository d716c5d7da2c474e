// Package router hides the HTTP routing library behind a small interface.
package router

import (
	"net/http"
)

// Middleware wraps a handler.
type Middleware = func(next http.Handler) http.Handler

type Router interface {
	http.Handler

	Use(middleware Middleware)
	Get(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Post(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Put(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Patch(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Delete(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)
	Options(pattern string, handlerFunc http.HandlerFunc, middlewares ...Middleware)

	// Group registers the routes added by fn under prefix, wrapped by middlewares
	// in addition to the middlewares of the parent.
	Group(prefix string, fn func(r Router), middlewares ...Middleware)
}
