package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ifuryst/postq/internal/config"
	"github.com/ifuryst/postq/internal/models"
	"github.com/ifuryst/postq/internal/service"
	"github.com/ifuryst/postq/internal/service/queue"
	"github.com/ifuryst/postq/internal/service/validator"
)

// Server exposes a read-only view of the queue. Every state change goes
// through the CLI.
type Server struct {
	Config *config.Config
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	QueueService *service.QueueService
}

func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)

	store := queue.NewStore(cfg.Paths.Queue)
	queueService := service.NewQueueService(store, validator.New(cfg.Validation), logger)

	srv := &Server{
		Config:       cfg,
		Router:       gin.New(),
		Logger:       logger,
		QueueService: queueService,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv
}

func (s *Server) setupMiddleware() {
	s.Router.Use(gin.Recovery())

	s.Router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("HTTP request",
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	})

	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	api := s.Router.Group("/api/v1")
	{
		posts := api.Group("/posts")
		{
			posts.GET("", s.handleListPosts)
			posts.GET("/stats", s.handleStats)
		}
		api.GET("/queue/validate", s.handleValidate)
	}
}

func (s *Server) handleListPosts(c *gin.Context) {
	filter := service.QueueFilter{
		Status: models.Status(c.Query("status")),
		Date:   c.Query("date"),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", filter.Status)})
		return
	}

	posts, err := s.QueueService.List(filter)
	if err != nil {
		s.Logger.Error("Failed to list posts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.QueueService.Stats()
	if err != nil {
		s.Logger.Error("Failed to compute queue stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read queue"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleValidate(c *gin.Context) {
	report, err := s.QueueService.Validate()
	if err != nil {
		s.Logger.Error("Failed to validate queue", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read queue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    report.Valid(),
		"total":    report.Total,
		"errors":   findingMessages(report.Errors),
		"warnings": findingMessages(report.Warnings),
		"statuses": report.StatusCounts,
	})
}

func findingMessages(findings []validator.Finding) []string {
	messages := make([]string, 0, len(findings))
	for _, f := range findings {
		messages = append(messages, f.String())
	}
	return messages
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
