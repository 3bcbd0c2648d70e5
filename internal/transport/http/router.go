package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-api-checkin/internal/application/attendance"
	"github.com/go-api-checkin/internal/application/session"
	"github.com/go-api-checkin/internal/application/user"
	"github.com/go-api-checkin/internal/application/verification"
	"github.com/go-api-checkin/internal/config"
	"github.com/go-api-checkin/internal/transport/http/handler"
	appmiddleware "github.com/go-api-checkin/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work such as rate-limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	codeDeps := verification.ServiceDeps{
		Store:     deps.Cache,
		KeyPrefix: cfg.Keys.Code,
		TTL:       cfg.LoginCodeTTL,
		LogCodes:  cfg.LogCodes,
	}
	if deps.SMSSender != nil {
		codeDeps.Sender = deps.SMSSender
	}
	codeSvc := verification.NewService(codeDeps)
	sessionSvc := session.NewService(session.ServiceDeps{
		Verifier:       codeSvc,
		UserRepo:       deps.UserRepo,
		TokenStore:     deps.Cache,
		KeyPrefix:      cfg.Keys.Token,
		TTL:            cfg.LoginTokenTTL,
		NicknamePrefix: cfg.NicknamePrefix,
	})
	attendanceSvc := attendance.NewService(attendance.ServiceDeps{
		Store:     deps.Cache,
		KeyPrefix: cfg.Keys.Sign,
	})

	healthH := handler.NewHealthHandler()
	userH := handler.NewUserHandler(codeSvc, sessionSvc, user.NewService(deps.UserRepo))
	signH := handler.NewSignHandler(attendanceSvc)

	// Code issue and login are the endpoints that cost an SMS or a guess.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.CodeRateLimit), cfg.CodeRateBurst, cfg.TrustedProxies...)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/users/code", userH.SendCode)
		r.With(sensitiveRL.Limit).Post("/users/login", userH.Login)

		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(sessionSvc))

			r.Post("/users/logout", userH.Logout)
			r.Get("/users/me", userH.Me)
			r.Post("/users/sign", signH.Sign)
			r.Get("/users/sign/count", signH.Count)
			r.Get("/users/{id}", userH.Get)
		})
	})

	return r
}
