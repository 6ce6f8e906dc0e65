// Package api serves a point of sale session over HTTP, for a browser front
// end running on the same machine.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/etnz/pdv"
)

// maxNotices bounds the notices kept until a client reads them.
const maxNotices = 50

// Server holds the session shared by every request.
//
// A Session is not safe for concurrent use: handlers run one at a time.
type Server struct {
	mu      sync.Mutex
	session *pdv.Session
	logger  *zap.Logger
	notices []pdv.Notice
	metrics *metrics
}

// NewServer creates a server for s. It keeps the notices published by s
// until a client reads them.
func NewServer(s *pdv.Session, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := &Server{session: s, logger: logger, metrics: newMetrics()}
	s.Subscribe(func(n pdv.Notice) {
		srv.metrics.observeNotice(n)
		srv.notices = append(srv.notices, n)
		if len(srv.notices) > maxNotices {
			srv.notices = srv.notices[len(srv.notices)-maxNotices:]
		}
	})
	return srv
}

// InitRoutes registers the endpoints on e, under /api.
func (s *Server) InitRoutes(e *gin.Engine) {
	g := e.Group("/api")

	g.GET("/products", s.locked(s.handleListProducts))
	g.POST("/products", s.locked(s.handleSaveProduct))
	g.DELETE("/products/:id", s.locked(s.handleDeleteProduct))
	g.GET("/products/:id/history", s.locked(s.handleHistory))
	g.POST("/stock", s.locked(s.handleAdjustStock))

	g.GET("/cart", s.locked(s.handleGetCart))
	g.POST("/cart/lines", s.locked(s.handleAddLine))
	g.PUT("/cart/lines/:id", s.locked(s.handleSetQuantity))
	g.DELETE("/cart/lines/:id", s.locked(s.handleRemoveLine))
	g.POST("/checkout", s.locked(s.handleCheckout))

	g.GET("/cashier", s.locked(s.handleCashReport))
	g.GET("/cashier/float", s.locked(s.handleGetFloat))
	g.PUT("/cashier/float", s.locked(s.handleSetFloat))
	g.POST("/cashier/retire", s.locked(s.handleRetire))

	g.GET("/sales", s.locked(s.handleSales))
	g.GET("/notices", s.locked(s.handleNotices))

	e.GET("/metrics", s.metrics.handler())
	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}

// NewRouter returns a gin engine serving s, with request logging and
// Prometheus metrics on /metrics.
func NewRouter(s *Server) *gin.Engine {
	e := gin.New()
	e.Use(logRequests(s.logger), s.metrics.countRequests(), gin.Recovery())
	s.InitRoutes(e)
	return e
}

// Flush waits for every pending write of the session.
func (s *Server) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Flush()
}

func (s *Server) locked(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(c)
	}
}

func logRequests(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}
