package api

import (
	"context"
	"fmt"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/rohits-web03/dropvault/docs"

	"github.com/rohits-web03/dropvault/internal/api/handlers"
	"github.com/rohits-web03/dropvault/internal/api/middleware"
	"github.com/rohits-web03/dropvault/internal/config"
	"github.com/rohits-web03/dropvault/internal/logging"
	"github.com/rs/cors"
)

func SetupRouter(cfg config.Config, h *handlers.Handler, log logging.Logger) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(cfg.CorsConfig())
	requireAuth := middleware.AuthMiddleware(cfg.JWTSecret)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /sign-up", h.RegisterUser)
	authMux.HandleFunc("POST /login", h.LoginUser)
	authMux.Handle("POST /logout", requireAuth(http.HandlerFunc(h.Logout)))

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// Recipients are anonymous; a sender session is picked up when present.
	shareMux := http.NewServeMux()
	shareMux.HandleFunc("GET /{id}", h.GetDelivery)
	shareMux.HandleFunc("POST /{id}/views", h.RecordView)
	shareMux.HandleFunc("POST /{id}/access-code", h.RequestAccessCode)
	shareMux.HandleFunc("POST /{id}/access-code/verify", h.VerifyAccessCode)
	shareMux.HandleFunc("GET /{id}/files/{index}", h.DownloadFile)

	mainMux.Handle("/api/v1/share/",
		http.StripPrefix("/api/v1/share", middleware.OptionalAuth(cfg.JWTSecret)(shareMux)),
	)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /deliveries", h.CreateDelivery)
	protectedMux.HandleFunc("GET /deliveries", h.ListDeliveries)
	protectedMux.HandleFunc("POST /deliveries/{id}/revoke", h.RevokeDelivery)
	protectedMux.HandleFunc("DELETE /deliveries/{id}", h.DeleteDelivery)
	protectedMux.HandleFunc("GET /deliveries/{id}/access-logs", h.AccessLogs)
	protectedMux.HandleFunc("GET /deliveries/{id}/files/{index}/url", h.FileURL)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			requireAuth(protectedMux),
		),
	)

	log.Info(context.Background(), "router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(log)(handler)
	return handler
}
