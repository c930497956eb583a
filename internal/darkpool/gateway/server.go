// Package gateway is the thin HTTP forwarding surface described in spec
// §1/§6: it validates requests, maps them onto the matching engine,
// durable store, and coordinator, and translates DarkpoolError codes to
// HTTP status. It holds no business logic of its own. Grounded on the
// teacher's internal/gateway/{server,router,middleware}.go (fx.In-wired
// gin.Engine, lifecycle-hooked http.Server, CORS + recovery + request
// logging) and internal/api/middleware/security.go (ulule/limiter-backed
// per-IP rate limiting).
package gateway

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/darkpool-labs/darkpoolcore/internal/darkpool/config"
)

// ServerParams are the fx-injected dependencies for the HTTP server.
type ServerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Logger    *zap.Logger
	Config    *config.Config
	Handlers  *Handlers
}

// Server wraps the gin engine and the http.Server hosting it.
type Server struct {
	Engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
}

// NewServer builds the gin engine, registers every route, and wraps it in
// an fx.Lifecycle hook so the process entrypoint owns start/stop.
func NewServer(p ServerParams) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestLogger(p.Logger))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(RateLimitByIP(20, 40))

	RegisterRoutes(engine, p.Handlers)

	srv := &Server{
		Engine: engine,
		logger: p.Logger,
		http: &http.Server{
			Addr:    fmtAddr(p.Config.Gateway.Host, p.Config.Gateway.Port),
			Handler: engine,
		},
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				p.Logger.Info("starting gateway server", zap.String("addr", srv.http.Addr))
				if err := srv.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					p.Logger.Error("gateway server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("stopping gateway server")
			return srv.http.Shutdown(ctx)
		},
	})

	return srv
}

// RequestLogger logs one structured line per request, matching the
// teacher's RequestLogger shape.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("gateway request",
			zap.String("path", path),
			zap.String("method", c.Request.Method),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func fmtAddr(host string, port int) string {
	if host == "" {
		host = "0.0.0.0"
	}
	return host + ":" + strconv.Itoa(port)
}
