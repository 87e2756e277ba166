// Package httpapi exposes the JSON API: registration and login, premium
// prediction with per-user history, and the admin surface.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/premio/internal/logging"
	"github.com/dmitrijs2005/premio/internal/server/config"
	"github.com/dmitrijs2005/premio/internal/server/services"
)

type Server struct {
	address        string
	logger         logging.Logger
	users          *services.UserService
	predictions    *services.PredictionService
	exports        *services.ExportService
	jwtSecret      []byte
	rateLimitRPS   float64
	rateLimitBurst int
}

func NewServer(cfg *config.Config, l logging.Logger, us *services.UserService,
	ps *services.PredictionService, es *services.ExportService) *Server {
	return &Server{
		address:        cfg.EndpointAddrHTTP,
		logger:         l.With("module", "http_server"),
		users:          us,
		predictions:    ps,
		exports:        es,
		jwtSecret:      []byte(cfg.SecretKey),
		rateLimitRPS:   cfg.RateLimitRPS,
		rateLimitBurst: cfg.RateLimitBurst,
	}
}

// Router assembles the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(cors.Default())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
	}

	user := r.Group("/user")
	user.Use(s.authMiddleware())
	{
		user.POST("/api/predict", s.rateLimitMiddleware(), s.handlePredict)
		user.POST("/api/bmi", s.handleBMI)
		user.GET("/predictions", s.handlePredictions)
		user.GET("/profile", s.handleProfile)
	}

	admin := r.Group("/admin")
	admin.Use(s.authMiddleware(), s.adminMiddleware())
	{
		admin.GET("/users", s.handleAdminUsers)
		admin.GET("/predictions", s.handleAdminPredictions)
		admin.GET("/stats", s.handleAdminStats)
		admin.GET("/analytics", s.handleAdminAnalytics)
		admin.GET("/users/:id/activity", s.handleAdminUserActivity)
		admin.POST("/users/:id/promote", s.handleAdminPromote)
		admin.DELETE("/users/:id", s.handleAdminDelete)
		admin.POST("/export", s.handleAdminExport)
	}

	return r
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
