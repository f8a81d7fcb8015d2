// Package server is the HTTP transport for the agent. It parses and
// validates request shapes, gates every operation behind the token check,
// and serializes operation outcomes; all decision logic lives in the
// policy and ops packages.
package server

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sv443/WHDL/internal/api"
	"github.com/Sv443/WHDL/internal/auth"
	"github.com/Sv443/WHDL/internal/config"
	"github.com/Sv443/WHDL/internal/logger"
	"github.com/Sv443/WHDL/internal/ops"
)

var httpLog = logger.New("http")

// Server wires the agent operations into a gin router.
type Server struct {
	cfg    *config.Config
	auth   *auth.Authority
	ops    *ops.Ops
	router *gin.Engine
}

// New creates the request gateway.
func New(cfg *config.Config, authority *auth.Authority, operations *ops.Ops) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply middleware in order
	router.Use(gin.Recovery())
	router.Use(api.SecurityHeadersMiddleware())
	router.Use(api.BodySizeLimitMiddleware(api.MaxBodySize))
	if cfg.LogRequests {
		router.Use(requestLogMiddleware())
	}

	s := &Server{
		cfg:    cfg,
		auth:   authority,
		ops:    operations,
		router: router,
	}

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler for the agent.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	s.router.POST("/download", s.handleDownload)
	s.router.POST("/run", s.handleRun)
	s.router.DELETE("/delete", s.handleDelete)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// authorize checks the query token. A failed check answers with an empty
// 404 so probes learn nothing about the token mechanism.
func (s *Server) authorize(c *gin.Context) bool {
	if !s.auth.IsAuthorized(c.Query("token")) {
		api.Denied(c)
		return false
	}
	return true
}

// bindJSON decodes the request body into req. An absent body is not an
// error here: the per-field checks in the handlers produce the precise
// "X required" messages.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		api.Error(c, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

func writeOpError(c *gin.Context, err error) {
	var oe *ops.OpError
	if errors.As(err, &oe) {
		api.Error(c, oe.Status, oe.Message)
		return
	}
	api.Error(c, http.StatusInternalServerError, err.Error())
}

// DownloadRequest is the body of POST /download.
type DownloadRequest struct {
	URL  string `json:"url"`
	Path string `json:"path"`
}

func (s *Server) handleDownload(c *gin.Context) {
	if !s.authorize(c) {
		return
	}
	var req DownloadRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := s.ops.Download(req.URL, req.Path, c.Request.RemoteAddr); err != nil {
		writeOpError(c, err)
		return
	}
	api.Created(c, gin.H{"success": true})
}

// RunRequest is the body of POST /run.
type RunRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleRun(c *gin.Context) {
	if !s.authorize(c) {
		return
	}
	var req RunRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := s.ops.Run(req.Path, c.Request.RemoteAddr)
	if err != nil {
		writeOpError(c, err)
		return
	}
	api.Success(c, gin.H{
		"success": true,
		"stdout":  res.Stdout,
		"stderr":  res.Stderr,
	})
}

// DeleteRequest is the body of DELETE /delete. A non-empty Pattern
// switches to glob mode under Path.
type DeleteRequest struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern"`
}

func (s *Server) handleDelete(c *gin.Context) {
	if !s.authorize(c) {
		return
	}
	var req DeleteRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := s.ops.Delete(req.Path, req.Pattern); err != nil {
		writeOpError(c, err)
		return
	}
	api.Success(c, gin.H{"success": true})
}

func requestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		httpLog.Info("%s %s from %s -> %d (%v)",
			c.Request.Method, c.Request.URL.Path,
			api.MaskIP(c.Request.RemoteAddr), c.Writer.Status(), time.Since(start))
	}
}
