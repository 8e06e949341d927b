package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/smc020412/naverSmartStore/internal/api/v1"
	"github.com/smc020412/naverSmartStore/internal/config"
	"github.com/smc020412/naverSmartStore/internal/metrics"
)

// Server HTTP 서버
type Server struct {
	router  *gin.Engine
	v1      *v1.Handler
	metrics *metrics.Registry
	logger  *zap.Logger
	cfg     *config.AppConfig
}

// NewServer 서버 생성
func NewServer(cfg *config.AppConfig, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	exportDir, err := config.EnsureExportDir(cfg)
	if err != nil {
		logger.Warn("export dir unavailable, falling back to temp dir",
			zap.String("dir", cfg.Data.ExportDir),
			zap.Error(err),
		)
		exportDir = ""
	}

	reg := metrics.NewRegistry()
	s := &Server{
		router:  gin.New(),
		metrics: reg,
		logger:  logger,
		cfg:     cfg,
		v1: v1.NewHandler(v1.Deps{
			Config:    cfg,
			Logger:    logger,
			Metrics:   reg,
			ExportDir: exportDir,
			Version:   version,
		}),
	}

	s.setupRoutes()
	return s
}

// setupRoutes 라우트 설정
func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery(), s.accessLog())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}
	s.v1.RegisterRoutes(s.router.Group("/api/v1"))

	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	s.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}

// Handler 테스트용
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 서버 시작. ctx 가 끝나면 graceful shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.v1.StartJanitor(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
