package api

import (
	"net/http"
	"time"

	"solana-trading-core/internal/events"
	"solana-trading-core/internal/monitor"

	"github.com/gin-gonic/gin"
)

// Server wires read-only admin HTTP endpoints around the event bus and
// system metrics. It exposes no mutating routes: the trading core has no
// user-facing order-placement surface, per design.
type Server struct {
	Router  *gin.Engine
	Bus     *events.Bus
	Metrics *monitor.SystemMetrics
	Meta    SystemMeta
}

// SystemMeta describes runtime status exposed to the admin surface.
type SystemMeta struct {
	DryRun  bool
	Cluster string
	Version string
}

// NewServer creates the admin API server.
func NewServer(bus *events.Bus, metrics *monitor.SystemMetrics, meta SystemMeta) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger(metrics))
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(10 * time.Second))

	s := &Server{
		Router:  r,
		Bus:     bus,
		Metrics: metrics,
		Meta:    meta,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/healthz", s.healthz)
	s.Router.GET("/metrics", s.metrics)
	s.Router.GET("/system/status", s.systemStatus)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) metrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.Metrics.GetSnapshot())
}

func (s *Server) systemStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dry_run": s.Meta.DryRun,
		"cluster": s.Meta.Cluster,
		"version": s.Meta.Version,
	})
}

// Start runs the admin HTTP server on addr.
func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
