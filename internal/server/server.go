// Package server exposes the engine over HTTP for the external scheduler and
// support tooling.
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rezonia/invoice-autotransfer/internal/model"
	"github.com/rezonia/invoice-autotransfer/internal/report"
	"github.com/rezonia/invoice-autotransfer/internal/transfer"
)

// AutoTransfer is the engine surface the server needs.
type AutoTransfer interface {
	RunAutoTransfer(ctx context.Context) report.RunSummary
	FindNotesMatching(ctx context.Context, q transfer.NotesQuery) []model.DiagnosticEntry
}

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RunTimeout   time.Duration
	Debug        bool
}

// Server represents the HTTP API server
type Server struct {
	config *Config
	router *gin.Engine
	engine AutoTransfer
}

// NewServer creates a new API server around the given engine.
func NewServer(config *Config, engine AutoTransfer) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		engine: engine,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/auto-transfer", s.handleAutoTransfer)
		v1.GET("/notes", s.handleNotes)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAutoTransfer(c *gin.Context) {
	timeout := s.config.RunTimeout
	if timeout == 0 {
		timeout = 30 * time.Minute
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	summary := s.engine.RunAutoTransfer(ctx)
	c.JSON(http.StatusOK, TransferResponse{Summary: summary})
}

func (s *Server) handleNotes(c *gin.Context) {
	var q transfer.NotesQuery

	if raw := c.Query("docEntry"); raw != "" {
		docEntry, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "docEntry must be an integer", Details: raw})
			return
		}
		q.DocEntry = &docEntry
	}
	q.CardCode = c.Query("cardCode")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Minute)
	defer cancel()

	entries := s.engine.FindNotesMatching(ctx, q)
	c.JSON(http.StatusOK, NotesResponse{Count: len(entries), Entries: entries})
}
