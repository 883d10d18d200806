package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	appLogger "github.com/FACorreiaa/go-posts-api/app/logger"
	_ "github.com/FACorreiaa/go-posts-api/docs"
	"github.com/FACorreiaa/go-posts-api/internal/api/auth"
	"github.com/FACorreiaa/go-posts-api/internal/api/post"
	"github.com/FACorreiaa/go-posts-api/internal/api/user"
	"github.com/FACorreiaa/go-posts-api/internal/types"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	UserHandler            user.Handler
	PostHandler            post.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
	AllowedOrigins         []string
	Logger                 *slog.Logger
}

// SetupRouter initializes and configures the API routes.
// Server-wide middleware is applied by NewHandler.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	// CORS for the browser frontends listed in config
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Heartbeat, public
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	// Swagger UI and the registered document at /swagger/doc.json
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			// --- Public Auth Routes ---
			// Logout stays public: without revocation it only tells the
			// client to discard its token
			r.Post("/signup", cfg.AuthHandler.Signup)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/logout", cfg.AuthHandler.Logout)

			// --- Protected Auth Routes ---
			// The authenticated user reaches handlers as a parameter via WithUser
			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				r.Get("/profile", auth.WithUser(cfg.UserHandler.GetUserProfile))
				r.Put("/profile", auth.WithUser(cfg.UserHandler.UpdateUserProfile))
			})
		})

		r.Route("/posts", func(r chi.Router) {
			// Reads are public
			r.Get("/", cfg.PostHandler.ListPosts)
			r.Get("/{id}", cfg.PostHandler.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(cfg.AuthenticateMiddleware)
				// Ownership is checked by the post service against the stored post
				r.Post("/", auth.WithUser(cfg.PostHandler.CreatePost))
				r.Put("/{id}", auth.WithUser(cfg.PostHandler.UpdatePost))
				r.Delete("/{id}", auth.WithUser(cfg.PostHandler.DeletePost))
			})
		})

		// --- Admin Routes ---
		// Authenticate must run before RequireRole
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)
			r.Use(auth.RequireRole(cfg.Logger, types.RoleAdmin))
			r.Get("/users", auth.WithUser(cfg.UserHandler.ListUsers))
		})
	})

	return r
}

// NewHandler wraps the API routes with the server-wide middleware stack.
func NewHandler(cfg *Config, timeout time.Duration) http.Handler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	router := chi.NewMux()
	// Request id first so every log line and error response carries it
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(cfg.Logger))
	// Recover from panics with a 500
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", SetupRouter(cfg))
	return router
}
