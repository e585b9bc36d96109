package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/imrishuroy/landing-checkout/internal/handlers"
	"github.com/imrishuroy/landing-checkout/internal/logging"
	"github.com/imrishuroy/landing-checkout/internal/web"
)

// Options configures the HTTP router.
type Options struct {
	Handlers handlers.HandlerConfig
	// CORSOrigins lists allowed origins; empty allows any origin.
	CORSOrigins []string
}

// NewRouter wires middleware, the API and the landing page.
func NewRouter(opts Options) (*gin.Engine, error) {
	logger := opts.Handlers.Logger
	if logger == nil {
		logger = zap.NewNop()
		opts.Handlers.Logger = logger
	}

	corsCfg := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.CORSOrigins
	}
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors config: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(logger))
	r.Use(SecurityHeaders())
	r.Use(cors.New(corsCfg))

	handlers.RegisterHealthRoutes(r, opts.Handlers)
	handlers.RegisterRulesRoutes(r, opts.Handlers)
	handlers.RegisterOrdersRoutes(r, opts.Handlers)

	static := gin.WrapH(web.Handler())
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
			return
		}
		static(c)
	})

	return r, nil
}

// Run serves h on addr until ctx is cancelled, then drains in-flight
// requests for up to drain before returning.
func Run(ctx context.Context, addr string, h http.Handler, drain time.Duration, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
