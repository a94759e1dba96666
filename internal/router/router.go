// Package router sets up all HTTP routes and middleware chains for the
// laundry API. Reads are open; writes additionally pass the rate limiter,
// and order creation honours Idempotency-Key.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lavanderia/internal/handlers"
	"lavanderia/internal/middleware"
)

// Options carries the optional pieces of the middleware stack.
type Options struct {
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
	// RateLimiter guards write routes when set.
	RateLimiter *middleware.RateLimiter
	// Idempotency records order creation responses when set.
	Idempotency middleware.ResponseStore
	// TrustProxy takes the client address from forwarding headers.
	TrustProxy bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	if opts.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.IdempotencyHeader},
		ExposedHeaders:   []string{"Retry-After", "Idempotent-Replayed"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(handlers.NotFound)
	r.Get("/health", handlers.Health)

	write := func(h http.HandlerFunc) http.Handler {
		if opts.RateLimiter == nil {
			return h
		}
		return opts.RateLimiter.Middleware(h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/articles", func(r chi.Router) {
			r.Get("/", api.ListArticles)
			r.Get("/client/{id}", api.ListClientArticles)
			r.Get("/{id}", api.GetArticle)
			r.Method(http.MethodPost, "/", write(api.CreateArticle))
			r.Method(http.MethodPut, "/{id}", write(api.UpdateArticle))
			r.Method(http.MethodDelete, "/{id}", write(api.DeleteArticle))
		})

		r.Route("/clients", func(r chi.Router) {
			r.Get("/", api.ListClients)
			r.Get("/{id}", api.GetClient)
			r.Method(http.MethodPost, "/", write(api.CreateClient))
			r.Method(http.MethodPut, "/{id}", write(api.UpdateClient))
			r.Method(http.MethodDelete, "/{id}", write(api.DeleteClient))
			r.Method(http.MethodPut, "/{id}/prices/{articleId}", write(api.SetClientPrice))
			r.Method(http.MethodDelete, "/{id}/prices/{articleId}", write(api.DeleteClientPrice))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", api.ListOrders)
			r.Get("/client/{clientId}/stats", api.ClientOrderStats)
			r.Get("/{orderId}", api.GetOrder)
			r.Method(http.MethodPost, "/", write(middleware.Idempotency(opts.Idempotency)(http.HandlerFunc(api.CreateOrder)).ServeHTTP))
			r.Method(http.MethodPatch, "/{orderId}/status", write(api.UpdateOrderStatus))
		})
	})

	return r
}
