package api

import (
	"net/http"

	"github.com/dom/mama-respira/internal/api/handlers"
	"github.com/dom/mama-respira/internal/api/middleware"
	"github.com/dom/mama-respira/internal/config"
	"github.com/dom/mama-respira/internal/metrics"
	"github.com/dom/mama-respira/internal/service"
	"github.com/dom/mama-respira/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(log.Named("http")))
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(metrics.InstrumentHandler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, log.Named("auth"))
	messageHandler := handlers.NewMessageHandler(services.Message, services.Auth, log.Named("messages"))
	coachHandler := handlers.NewCoachHandler(services.Auth, services.Conversation, services.Bitacora, services.Checkin, log.Named("coach"))
	bitacoraHandler := handlers.NewBitacoraHandler(services.Bitacora, log.Named("bitacora"))
	checkinHandler := handlers.NewCheckinHandler(services.Checkin, log.Named("checkin"))
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, log.Named("ws"))

	authLimiter := middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authenticate(services.Auth))

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(authLimiter, log.Named("ratelimit")))
				r.Post("/register", authHandler.Register)
				r.Post("/login", authHandler.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/me", authHandler.Me)
				r.Post("/logout", authHandler.Logout)
				r.Post("/upgrade-premium", authHandler.UpgradePremium)
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/coach-id", messageHandler.CoachID)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/", messageHandler.Send)
				r.Get("/conversation/{otherUserId}", messageHandler.Conversation)
				r.Get("/unread-count", messageHandler.UnreadCount)
			})
		})

		r.Route("/coach", func(r chi.Router) {
			r.Use(middleware.RequireCoach)
			r.Get("/clients", coachHandler.Clients)
			r.Put("/client/{userId}/role", coachHandler.UpdateRole)
			r.Get("/client/{userId}/bitacoras", coachHandler.ClientBitacoras)
			r.Get("/client/{userId}/checkins", coachHandler.ClientCheckins)
		})

		r.Route("/bitacora", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", bitacoraHandler.Create)
			r.Get("/", bitacoraHandler.List)
			r.Get("/today", bitacoraHandler.Today)
			r.Get("/{id}", bitacoraHandler.Get)
			r.Put("/{id}", bitacoraHandler.Update)
		})

		r.Route("/checkins", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", checkinHandler.Create)
			r.Get("/", checkinHandler.List)
		})

		// WebSocket endpoint
		r.Get("/ws", wsHandler.Handle)
	})

	return r
}
