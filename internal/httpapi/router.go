package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	smsrepo "github.com/vbs-0/bomber/internal/sms/repository"
	userrepo "github.com/vbs-0/bomber/internal/user/repository"
)

// Deps bundles everything the router needs, built once at process start
// and threaded through the handlers.
type Deps struct {
	Auth       AuthService
	OTP        OTPService
	Dispatch   Dispatcher
	Credit     CreditService
	Protection ProtectionService
	Users      userrepo.UserRepository
	Messages   smsrepo.MessageRepository
	Logger     *slog.Logger
}

// NewRouter assembles the full API surface.
func NewRouter(deps Deps) *chi.Mux {
	validate := validator.New()

	authHandler := NewAuthHandler(deps.Auth, deps.OTP, deps.Dispatch, validate, deps.Logger)
	messageHandler := NewMessageHandler(deps.Dispatch, deps.Credit, deps.Messages, validate, deps.Logger)
	protectionHandler := NewProtectionHandler(deps.Protection, deps.Logger)
	adminHandler := NewAdminHandler(deps.Dispatch, deps.Credit, deps.Protection, deps.Users, deps.Messages, validate, deps.Logger)

	sessionMW := SessionMiddleware(deps.Auth, deps.Logger)
	adminMW := RequireAdmin(deps.Logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(MetricsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		authHandler.RegisterPublicRoutes(api)

		api.Group(func(session chi.Router) {
			session.Use(sessionMW)
			authHandler.RegisterSessionRoutes(session)
			messageHandler.RegisterRoutes(session)
			protectionHandler.RegisterRoutes(session)

			session.Route("/admin", func(admin chi.Router) {
				admin.Use(adminMW)
				adminHandler.RegisterRoutes(admin)
			})
		})
	})

	return r
}
