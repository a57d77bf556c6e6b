// Package api wires the gin HTTP surface — status/upcoming/preview queries,
// interactive commands, schedule management, and auth — on top of the
// scheduler core.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/arung-agamani/denpa-radio/config"
	"github.com/arung-agamani/denpa-radio/internal/api/handler"
	"github.com/arung-agamani/denpa-radio/internal/api/service"
	"github.com/arung-agamani/denpa-radio/internal/auth"
	"github.com/arung-agamani/denpa-radio/internal/transport"
	"github.com/gin-gonic/gin"
)

// tickInterval is how often the server advances the scheduler to the
// current wall clock even when no request is driving it.
const tickInterval = 1 * time.Second

type Server struct {
	cfg         *config.Config
	svc         *service.ShowService
	broadcaster *transport.WSBroadcaster
	authn       *auth.Auth
	httpServer  *http.Server
}

func NewServer(cfg *config.Config, svc *service.ShowService, broadcaster *transport.WSBroadcaster) *Server {
	authn := auth.New(auth.Config{
		Username:           cfg.AdminUsername,
		Password:           cfg.AdminPassword,
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           24 * time.Hour,
		MaxLoginAttempts:   5,
		LoginWindowSeconds: 900,
	})

	s := &Server{cfg: cfg, svc: svc, broadcaster: broadcaster, authn: authn}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	showHandlers := handler.NewShowHandlers(svc)
	authHandlers := handler.NewAuthHandlers(authn)

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET(cfg.WSPath, broadcaster.ServeWS)

	api := router.Group("/api")
	{
		api.GET("/status", showHandlers.Status)
		api.GET("/upcoming", showHandlers.Upcoming)
		api.GET("/preview", showHandlers.Preview)
		api.POST("/auth/login", authHandlers.Login)
		api.GET("/auth/verify", AuthRequired(authn), authHandlers.VerifyToken)

		protected := api.Group("")
		protected.Use(AuthRequired(authn))
		{
			protected.GET("/warnings", showHandlers.Warnings)
			protected.POST("/command", showHandlers.Command)
			protected.POST("/schedules", showHandlers.AddSchedule)
			protected.POST("/reload", showHandlers.Reload)
		}
	}

	s.httpServer = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   0, // websocket connections stay open indefinitely
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return s
}

// Start runs the HTTP server and the scheduler tick loop until ctx is
// cancelled, then shuts both down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.svc.Tick()
			}
		}
	}()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.svc.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
