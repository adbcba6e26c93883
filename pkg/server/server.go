// Package server exposes a KnowledgeGraph over HTTP with gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/soundprediction/kgraph"
	"github.com/soundprediction/kgraph/pkg/config"
	"github.com/soundprediction/kgraph/pkg/server/handlers"
	"github.com/soundprediction/kgraph/pkg/types"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	graph  *kgraph.KnowledgeGraph
	server *http.Server
	logger *slog.Logger
}

// New creates a new server instance. A nil graph leaves only the health
// endpoints meaningful; readiness then reports not ready.
func New(cfg *config.Config, graph *kgraph.KnowledgeGraph, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config: cfg,
		graph:  graph,
		logger: logger.With("component", "server"),
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	if s.config.Server.Mode != "" {
		gin.SetMode(s.config.Server.Mode)
	}
	// Keep 2 and 2.0 apart in posted properties.
	binding.EnableDecoderUseNumber = true

	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(contextMiddleware())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Handler returns the configured router. Setup must have been called.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	var reader kgraph.GraphReader
	if s.graph != nil {
		reader = s.graph
	}
	healthHandler := handlers.NewHealthHandler(reader)

	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	if s.graph == nil {
		return
	}

	graphHandler := handlers.NewGraphHandler(s.graph)
	reasoningHandler := handlers.NewReasoningHandler(s.graph)
	retrieveHandler := handlers.NewRetrieveHandler(s.graph)
	exchangeHandler := handlers.NewExchangeHandler(s.graph)
	ingestHandler := handlers.NewIngestHandler(s.graph, s.logger)

	v1 := s.router.Group("/api/v1")
	{
		nodes := v1.Group("/nodes")
		{
			nodes.POST("", graphHandler.CreateNode)
			nodes.GET("", graphHandler.ListNodes)
			nodes.GET("/:id", graphHandler.GetNode)
			nodes.PUT("/:id", graphHandler.UpdateNode)
			nodes.DELETE("/:id", graphHandler.DeleteNode)
			nodes.GET("/:id/neighbors", graphHandler.Neighbors)
			nodes.GET("/:id/subgraph", graphHandler.Subgraph)
		}

		edges := v1.Group("/edges")
		{
			edges.POST("", graphHandler.CreateEdge)
			edges.GET("/:id", graphHandler.GetEdge)
			edges.DELETE("/:id", graphHandler.DeleteEdge)
		}

		v1.POST("/triples", graphHandler.CreateTriple)
		v1.GET("/triples", graphHandler.ListTriples)
		v1.POST("/query", graphHandler.Query)
		v1.POST("/paths", graphHandler.Paths)
		v1.GET("/stats", graphHandler.Stats)

		inference := v1.Group("/inference")
		{
			inference.POST("/run", reasoningHandler.RunInference)
			inference.GET("/triples", reasoningHandler.InferredTriples)
		}
		v1.GET("/validate", reasoningHandler.Validate)

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/pagerank", reasoningHandler.PageRank)
			analytics.GET("/communities", reasoningHandler.Communities)
			analytics.GET("/centrality", reasoningHandler.Centrality)
			analytics.GET("/duplicates", reasoningHandler.Duplicates)
		}

		v1.GET("/search", retrieveHandler.Search)
		v1.POST("/answer", retrieveHandler.Answer)

		ingest := v1.Group("/ingest")
		{
			ingest.POST("/text", ingestHandler.IngestText)
			ingest.DELETE("/clear", ingestHandler.ClearData)
		}

		snapshots := v1.Group("/snapshots")
		{
			snapshots.POST("", exchangeHandler.CreateSnapshot)
			snapshots.GET("", exchangeHandler.ListSnapshots)
			snapshots.POST("/:id/restore", exchangeHandler.RestoreSnapshot)
			snapshots.DELETE("/:id", exchangeHandler.DeleteSnapshot)
		}

		v1.GET("/export/:format", exchangeHandler.Export)
		v1.POST("/import", exchangeHandler.Import)
	}
}

// Start starts the server and blocks until it stops. A graceful Stop is
// not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("Starting server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID, X-Client-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// contextMiddleware puts the request and client ids from headers into the
// request context, generating a request id when none is sent.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = context.WithValue(ctx, types.ContextKeyRequestID, requestID)
		c.Header(RequestIDHeader, requestID)

		if clientID := c.GetHeader("X-Client-ID"); clientID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyClientID, clientID)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// loggingMiddleware logs one record per request. Server errors attached
// with c.Error are logged at error level with the request context, so a
// telemetry handler can pick up the request id.
func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		ctx := c.Request.Context()
		switch {
		case len(c.Errors) > 0:
			logger.ErrorContext(ctx, "Request failed", append(attrs, "error", c.Errors.String())...)
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.ErrorContext(ctx, "Request failed", attrs...)
		default:
			logger.DebugContext(ctx, "Request handled", attrs...)
		}
	}
}
