package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/kevinaaaquil/bookstore/backend/middleware"
	"github.com/kevinaaaquil/bookstore/backend/service"
)

// API holds everything the HTTP layer needs. Metrics and Limiter are
// optional; empty AllowedOrigins allows any origin.
type API struct {
	Guard          *service.Guard
	Auth           *service.AuthService
	Catalog        *service.CatalogService
	Orders         *service.OrderService
	Metrics        *middleware.Metrics
	Limiter        *middleware.RateLimiter
	MaxUploadBytes int64
	AllowedOrigins []string
}

func (a *API) Router() http.Handler {
	auth := &AuthHandler{Auth: a.Auth}
	users := &UsersHandler{Auth: a.Auth}
	authors := &AuthorsHandler{Catalog: a.Catalog}
	genres := &GenresHandler{Catalog: a.Catalog}
	books := &BooksHandler{Catalog: a.Catalog, MaxBytes: a.MaxUploadBytes}
	orders := &OrdersHandler{Orders: a.Orders}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(a.AllowedOrigins...))
	r.Use(middleware.SecurityHeaders)
	if a.Metrics != nil {
		r.Use(a.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", a.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteMessage(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteMessage(w, http.StatusOK, "welcome to the bookstore api")
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if a.Limiter != nil {
			r.Use(a.Limiter.Middleware)
		}

		r.Post("/register", handle(auth.Register))
		r.Post("/login", handle(auth.Login))

		r.Get("/authors", handle(authors.List))
		r.Get("/authors/{id}", handle(authors.Get))
		r.Get("/genres", handle(genres.List))
		r.Get("/genres/{id}", handle(genres.Get))
		r.Get("/books", handle(books.List))
		r.Get("/books/{id}", handle(books.Get))
		r.Get("/books/{id}/cover", handle(books.Cover))

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(a.Guard))
			r.Get("/me", handle(auth.Me))
			r.Post("/orders", handle(orders.Create))
			r.Get("/orders/my-orders", handle(orders.Mine))
			r.Delete("/books/{id}", handle(books.Delete))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Admin(a.Guard))
				r.Put("/users/{id}/promote", handle(users.Promote))

				r.Post("/authors", handle(authors.Create))
				r.Put("/authors/{id}", handle(authors.Update))
				r.Delete("/authors/{id}", handle(authors.Delete))

				r.Post("/genres", handle(genres.Create))
				r.Put("/genres/{id}", handle(genres.Update))
				r.Delete("/genres/{id}", handle(genres.Delete))

				r.Post("/books", handle(books.Create))
				r.Put("/books/{id}", handle(books.Update))
				r.Post("/books/{id}/cover", handle(books.UploadCover))
			})
		})
	})
	return r
}
