// Package server exposes a generated dataset over a small read-only HTTP
// API for local spot-checking: look up a blockface, filter by street, and
// inspect run statistics without opening the raw JSON.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fikei/curbmatch/internal/config"
)

// Server bundles router and dependencies for the preview API.
type Server struct {
	cfg    config.Serve
	store  *Store
	engine *gin.Engine
}

// New constructs a server with routes and middleware.
func New(cfg config.Serve, store *Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{cfg: cfg, store: store, engine: engine}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.GET("/blockfaces", s.handleListBlockfaces)
	s.engine.GET("/blockfaces/:id", s.handleGetBlockface)
	s.engine.GET("/stats", s.handleStats)
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) handleListBlockfaces(c *gin.Context) {
	limit := s.cfg.DefaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
			return
		}
		page = parsed
	}

	hasRegs := false
	if hrStr := c.Query("has_regulations"); hrStr != "" {
		val, err := strconv.ParseBool(hrStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid has_regulations"})
			return
		}
		hasRegs = val
	}

	blockfaces, total := s.store.List(ListQuery{
		Street:  c.Query("street"),
		HasRegs: hasRegs,
		Offset:  (page - 1) * limit,
		Limit:   limit,
	})

	c.JSON(http.StatusOK, gin.H{
		"blockfaces": blockfaces,
		"pagination": gin.H{
			"page":        page,
			"limit":       limit,
			"total_count": total,
			"total_pages": (total + limit - 1) / limit,
		},
	})
}

func (s *Server) handleGetBlockface(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id is required"})
		return
	}

	bf, ok := s.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "blockface not found"})
		return
	}
	c.JSON(http.StatusOK, bf)
}

func (s *Server) handleStats(c *gin.Context) {
	doc := s.store.Document()
	c.JSON(http.StatusOK, gin.H{
		"version":     doc.Version,
		"generatedAt": doc.GeneratedAt,
		"parameters":  doc.Parameters,
		"statistics":  doc.Statistics,
	})
}
