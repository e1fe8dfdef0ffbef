// Package server exposes the gograd tools over HTTP.
//
// Endpoints:
//
//	POST /tool         execute a tool call (gograd.ToolRequest)
//	POST /derivatives  typed shortcut for the derivatives tool
//	GET  /schema       tool schema for agent registration
//	GET  /health       liveness check
//	GET  /metrics      prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/njchilds90/gograd"
	"github.com/njchilds90/gograd/internal/ctxlog"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Server owns the HTTP handlers.
type Server struct {
	cfg    Config
	logger *slog.Logger
	engine *gin.Engine
}

// New builds a server and its routes.
func New(cfg Config, logger *slog.Logger) *Server {
	s := &Server{cfg: cfg, logger: logger}
	s.engine = gin.New()
	s.engine.Use(s.requestContext(), s.recoverer())
	s.engine.POST("/tool", s.handleTool)
	s.engine.POST("/derivatives", s.handleDerivatives)
	s.engine.GET("/schema", s.handleSchema)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gograd MCP server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestContext attaches a request id and a logger carrying it.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		logger := s.logger.With("request_id", id)
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), logger))

		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) recoverer() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				panicsTotal.Inc()
				ctxlog.FromContext(c.Request.Context()).Error("panic in handler",
					"panic", rec, "stack", string(debug.Stack()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
		}()
		c.Next()
	}
}

func (s *Server) handleTool(c *gin.Context) {
	logger := ctxlog.FromContext(c.Request.Context())
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	defer c.Request.Body.Close()

	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()

	var req gograd.ToolRequest
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: trailing data"})
		return
	}

	resp := s.call(req)
	if resp.Error != "" {
		logger.Info("tool call failed", "tool", req.Tool, "error", resp.Error)
	}
	s.respond(c, resp)
}

// DerivativesRequest is the body of POST /derivatives.
type DerivativesRequest struct {
	Source string   `json:"source" binding:"required"`
	Var    string   `json:"var"`
	At     *float64 `json:"at" binding:"required"`
	N      int      `json:"n" binding:"min=0"`
}

func (s *Server) handleDerivatives(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	var body DerivativesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	params := map[string]interface{}{
		"source": body.Source,
		"at":     *body.At,
		"n":      float64(body.N),
	}
	if body.Var != "" {
		params["var"] = body.Var
	}
	s.respond(c, s.call(gograd.ToolRequest{Tool: "derivatives", Params: params}))
}

func (s *Server) call(req gograd.ToolRequest) gograd.ToolResponse {
	if n, ok := req.Params["n"].(float64); ok {
		derivativeOrder.Observe(n)
	}
	start := time.Now()
	resp := gograd.HandleToolCallWithLimits(req, s.cfg.Limits)
	label := toolLabel(req.Tool)
	toolCallDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	toolCallsTotal.WithLabelValues(label, resultLabel(resp.Error != "")).Inc()
	if resp.Nodes > 0 {
		graphNodes.Observe(float64(resp.Nodes))
	}
	return resp
}

// respond writes a tool response. Tool failures travel in the body with
// 200; results that cannot be encoded, such as NaN values, get 422.
func (s *Server) respond(c *gin.Context, resp gograd.ToolResponse) {
	b, err := json.Marshal(resp)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gograd.ToolResponse{Error: err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", b)
}

func (s *Server) handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(gograd.MCPToolSpec()))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
