package server

import (
	"context"
	"net/http"

	"github.com/golang/groupcache"
)

// ContextKey is the request context key the middlewares use.
type ContextKey string

// WithGroupCaches sets the various caches.
func WithGroupCaches(h http.Handler, groups map[string]*groupcache.Group) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for k, v := range groups {
			ctx = context.WithValue(ctx, ContextKey(k), v)
		}
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithConfig sets the viewer server configuration.
func WithConfig(h http.Handler, config *Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKey("config"), config)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}
