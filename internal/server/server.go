// Package server wires the claim engine onto HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/starter-spark/kitclaim/internal/config"
	kitdomain "github.com/starter-spark/kitclaim/internal/kit/domain"
	licensedomain "github.com/starter-spark/kitclaim/internal/license/domain"
	"github.com/starter-spark/kitclaim/internal/observability/logger"
	"github.com/starter-spark/kitclaim/internal/observability/tracing"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	DB         *gorm.DB
	Engine     *gin.Engine
	LicenseSvc licensedomain.Service
	KitSvc     kitdomain.Service
}

type Server struct {
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB
	engine *gin.Engine

	licenseSvc licensedomain.Service
	kitSvc     kitdomain.Service

	claimLimiter *claimThrottle
}

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	tracing.SetPropagator()
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Cfg,
		log:          p.Log.Named("server"),
		db:           p.DB,
		engine:       p.Engine,
		licenseSvc:   p.LicenseSvc,
		kitSvc:       p.KitSvc,
		claimLimiter: newClaimThrottle(p.Cfg.ClaimRateLimit, p.Cfg.ClaimRateWindow),
	}
}

func (s *Server) RegisterAPIRoutes() {
	s.engine.GET("/healthz", s.Health)

	api := s.engine.Group("/api")
	api.Use(s.IdentityRequired())

	licenses := api.Group("/licenses")
	licenses.Use(s.ClaimRateLimit())
	licenses.POST("/:id/claim", s.ClaimLicense)
	licenses.POST("/:id/reject", s.RejectLicense)
	licenses.POST("/reconcile", s.ReconcileLicenses)
	licenses.POST("/claim-by-code", s.ClaimByCode)
	licenses.POST("/claim-link", s.ClaimByLink)
	licenses.GET("/pending", s.ListPendingLicenses)

	api.GET("/kits", s.ListKits)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(RunHTTP),
)
