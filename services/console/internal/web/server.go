package web

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"jobconsole/services/console/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// NewRouter builds the console's gin engine.
func NewRouter(cfg *config.Config, logger *zap.Logger, handler *Handler, store *SessionStore) (*gin.Engine, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	corsCfg := corsConfig(cfg.CORSAllowOrigins)
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), tracing(), requestLogger(logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/healthz", handler.health)

	pages := r.Group("/", sessions(store, cfg.SessionCookie, cfg.SessionTTL, cfg.CookieSecure, logger))
	{
		pages.GET("/", handler.root)
		pages.GET("/jobs", handler.listJobs)
		pages.POST("/jobs/filter", handler.filterJobs)
		pages.GET("/jobs/new", handler.newJob)
		pages.GET("/jobs/:id/edit", handler.editJob)
		pages.POST("/jobs/form", handler.submitForm)
		pages.POST("/jobs/:id/status", handler.changeStatus)
		pages.GET("/jobs/:id/delete", handler.confirmDelete)
		pages.POST("/jobs/:id/delete", handler.deleteJob)
		pages.GET("/reset-password", handler.showReset)
		pages.POST("/reset-password", handler.submitReset)
	}

	api := r.Group("/console/api", cors.New(corsCfg))
	{
		api.OPTIONS("/jobs", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		api.GET("/jobs", handler.jobsJSON)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{http.MethodGet, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.MaxAge = 12 * time.Hour

	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

// NewServer runs the router for the lifetime of the fx application.
func NewServer(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger, router *gin.Engine) *http.Server {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("console listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			logger.Info("shutting down console")
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
