// Package server exposes the query engine over HTTP as read-only JSON
// endpoints. It adds no graph semantics of its own: every route maps 1:1
// onto a query operation and returns structured data, never prose.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsgraph/opsgraph/pkg/core"
	"github.com/opsgraph/opsgraph/pkg/query"
)

// Server wraps a gin router around a query.Engine.
type Server struct {
	engine *query.Engine
	logger *slog.Logger
	router *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a server over the given engine.
func New(engine *query.Engine, opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine: engine,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	router.GET("/nodes", s.handleListNodes)
	router.GET("/nodes/:id", s.handleGetNode)
	router.GET("/nodes/:id/downstream", s.handleDownstream)
	router.GET("/nodes/:id/upstream", s.handleUpstream)
	router.GET("/nodes/:id/owner", s.handleOwner)
	router.GET("/nodes/:id/blast-radius", s.handleBlastRadius)
	router.GET("/path", s.handlePath)

	s.router = router
	return s
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("serving query API", "addr", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetNode(c *gin.Context) {
	node, err := s.engine.GetNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if node == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "node not found"})
		return
	}
	c.JSON(http.StatusOK, node)
}

func (s *Server) handleListNodes(c *gin.Context) {
	nodeType := c.Query("type")
	if nodeType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter: type"})
		return
	}

	// Every other query parameter is an exact-match metadata filter.
	filters := make(map[string]any)
	for key, values := range c.Request.URL.Query() {
		if key == "type" || len(values) == 0 {
			continue
		}
		filters[key] = values[0]
	}

	nodes, err := s.engine.ListNodes(c.Request.Context(), core.NodeType(nodeType), filters)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "count": len(nodes)})
}

func (s *Server) handleDownstream(c *gin.Context) {
	nodes, err := s.engine.Downstream(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "count": len(nodes)})
}

func (s *Server) handleUpstream(c *gin.Context) {
	nodes, err := s.engine.Upstream(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes": nodes, "count": len(nodes)})
}

func (s *Server) handleOwner(c *gin.Context) {
	owner, err := s.engine.GetOwner(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if owner == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no owning team found"})
		return
	}
	c.JSON(http.StatusOK, owner)
}

func (s *Server) handleBlastRadius(c *gin.Context) {
	blast, err := s.engine.BlastRadius(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if blast == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "node not found"})
		return
	}
	c.JSON(http.StatusOK, blast)
}

func (s *Server) handlePath(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters: from, to"})
		return
	}

	path, err := s.engine.Path(c.Request.Context(), from, to)
	if err != nil {
		s.fail(c, err)
		return
	}
	if path == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no dependency path exists"})
		return
	}
	c.JSON(http.StatusOK, path)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.logger.Error("query failed", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "graph store unavailable"})
}
