package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/tasklist-be/internal/api/handlers"
	"github.com/isdelr/tasklist-be/internal/auth"
	"github.com/isdelr/tasklist-be/internal/monitoring"
	"github.com/isdelr/tasklist-be/internal/services"
	"github.com/isdelr/tasklist-be/internal/websocket"
)

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Users  services.UserServiceProvider
	Tasks  services.TaskServiceProvider
	Events services.EventServiceProvider
	Tokens auth.TokenValidator
	Hub    *websocket.Hub
	DB     handlers.Pinger
	Stats  *monitoring.StatCollector

	AllowedOrigins []string
	TokenTTL       time.Duration
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(deps.Users, deps.TokenTTL, deps.SecureCookies)
	taskHandler := handlers.NewTaskHandler(deps.Tasks)
	eventHandler := handlers.NewEventHandler(deps.Events)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Stats)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)
	guard := auth.Guard(deps.Tokens)

	r.Get("/", healthHandler.Welcome)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/logout", userHandler.Logout)
			r.With(guard).Get("/me", userHandler.GetMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(guard)

			r.Get("/ws", wsHandler.Serve)
			r.Get("/events", eventHandler.GetRecent)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
					r.Put("/done", taskHandler.MarkDone)
				})
			})
		})
	})

	// Flat routes used by older clients.
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Post("/add", taskHandler.Create)
		r.Get("/tasks", taskHandler.List)
		r.Put("/done/{id}", taskHandler.MarkDone)
		r.Put("/update/{id}", taskHandler.Update)
		r.Delete("/delete/{id}", taskHandler.Delete)
	})

	return r
}
