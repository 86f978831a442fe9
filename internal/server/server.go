package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/emilythestrangee/community-board/backend/internal/config"
	"github.com/emilythestrangee/community-board/backend/internal/database"
	"github.com/emilythestrangee/community-board/backend/internal/handlers"
	"github.com/emilythestrangee/community-board/backend/internal/logger"
	"github.com/emilythestrangee/community-board/backend/internal/middleware"
	"github.com/emilythestrangee/community-board/backend/internal/observability"
	"github.com/emilythestrangee/community-board/backend/internal/repository"
	"github.com/emilythestrangee/community-board/backend/internal/service"
)

type Server struct {
	cfg     *config.Config
	log     *logger.Logger
	db      database.Service
	auth    *middleware.Auth
	handler *handlers.Handler
}

// New wires the services, seeds moderator roles and builds the handlers.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, db database.Service) (*Server, error) {
	gormDB := db.GetDB()

	roles := repository.NewRoleStore(gormDB)
	moderatorIDs, err := cfg.ModeratorIDs()
	if err != nil {
		return nil, err
	}
	if err := roles.SeedModerators(ctx, moderatorIDs); err != nil {
		return nil, fmt.Errorf("seeding moderators: %w", err)
	}
	if len(moderatorIDs) > 0 {
		log.Info("Moderator roles seeded", "user_ids", moderatorIDs)
	}

	retry := service.DefaultRetryPolicy()
	retry.MaxRetries = cfg.VoteMaxRetries
	if cfg.VoteRetryInitialInterval > 0 {
		retry.InitialInterval = cfg.VoteRetryInitialInterval
	}

	svc := handlers.Services{
		Votes:   service.NewVoteService(gormDB, retry, cfg.VoteTimeout, log),
		Reports: service.NewReportService(gormDB, log),
		Moderation: service.NewModerationService(gormDB, roles, service.FlagPolicy{
			MinReports:        cfg.FlagMinReports,
			DistinctReporters: cfg.FlagDistinctReporters,
		}, log),
	}

	auth := middleware.NewAuth(cfg.JWTSecret)
	return &Server{
		cfg:     cfg,
		log:     log,
		db:      db,
		auth:    auth,
		handler: handlers.NewHandler(gormDB, auth, svc, log),
	}, nil
}

// HTTPServer returns the configured *http.Server.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.log))
	if s.cfg.TracingEnabled {
		r.Use(otelgin.Middleware(observability.ServiceName))
	}

	origins := s.cfg.Origins()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !allowsAnyOrigin(origins),
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/register", s.handler.Auth.Register)
		api.POST("/login", s.handler.Auth.Login)

		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)

		// Moderator-only reads answer 401 "Unauthorized" for anonymous callers too.
		moderation := api.Group("/admin")
		moderation.Use(s.auth.OptionalAuth())
		{
			moderation.GET("/flags", s.handler.Moderation.GetFlagged)
			moderation.GET("/posts/:id/audit", s.handler.Moderation.AuditVotes)
		}

		protected := api.Group("")
		protected.Use(s.auth.RequireAuth())
		{
			protected.GET("/me", s.handler.Auth.GetMe)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.POST("/posts/:id/vote", s.handler.Post.VotePost)
			protected.GET("/posts/:id/vote", s.handler.Post.GetMyVote)

			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			protected.POST("/admin/flags", s.handler.Moderation.SubmitReport)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.db.Health()
	if stats["status"] != "up" {
		c.JSON(http.StatusServiceUnavailable, stats)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
