package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handlers"
	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/middlewares"
	"backend/internal/models"
	"backend/internal/reconcile"
	"backend/internal/repositories"
	"backend/internal/routes"
	"backend/internal/services"
	"backend/internal/storage"
	"backend/internal/utils"
)

// Infra holds the database handles shared by the API and the CLI commands.
type Infra struct {
	Pool *pgxpool.Pool
	DB   *gorm.DB
}

// Connect creates the database when missing, applies the migrations and
// opens both the pgx pool and the gorm handle on top of it.
func Connect(ctx context.Context, cfg *config.Config) (*Infra, error) {
	if err := database.EnsureDatabaseExists(ctx, cfg.Database); err != nil {
		return nil, err
	}
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	db, err := database.OpenGorm(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &Infra{Pool: pool, DB: db}, nil
}

func (i *Infra) Close() {
	if sqlDB, err := i.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	i.Pool.Close()
}

// Server is the HTTP API with the connections it owns.
type Server struct {
	HTTP  *http.Server
	infra *Infra
	rdb   *redis.Client
}

func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	log := logger.Get()

	infra, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Fail fast with a clear message when Redis is down.
	{
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			infra.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	disk, err := storage.NewDisk(cfg.Media.Root, cfg.Media.BaseURL)
	if err != nil {
		infra.Close()
		_ = rdb.Close()
		return nil, err
	}

	metrics.Init(cfg.Metrics.Prefix, prometheus.DefaultRegisterer)

	router := NewRouter(cfg, Dependencies{
		Pool:  infra.Pool,
		DB:    infra.DB,
		Redis: rdb,
		Files: disk,
	})

	return &Server{
		HTTP: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		infra: infra,
		rdb:   rdb,
	}, nil
}

// Shutdown drains in-flight requests, then closes Redis and the database.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.HTTP.Shutdown(ctx)
	if cerr := s.rdb.Close(); cerr != nil && !errors.Is(cerr, redis.ErrClosed) {
		err = errors.Join(err, cerr)
	}
	s.infra.Close()
	return err
}

// Dependencies are the collaborators NewRouter wires handlers onto.
type Dependencies struct {
	Pool  *pgxpool.Pool
	DB    *gorm.DB
	Redis *redis.Client
	Files *storage.Disk
}

func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	log := logger.Get()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Dependency injection
	tokens := utils.NewTokenIssuer(cfg.JWT)
	userRepo := repositories.NewUserRepository(deps.Pool)
	redisRepo := repositories.NewRedisRepository(deps.Redis, cfg.JWT.RefreshTTL)
	authService := services.NewAuthService(userRepo, redisRepo, tokens)
	userService := services.NewUserService(userRepo)

	store := repositories.NewAggregateStore(deps.Pool)
	reconciler := reconcile.New(store, deps.Files, reconcile.WithDeleteHook(func(ctx context.Context, files []string) {
		logger.FromContext(ctx).Debug("released stored files", zap.Int("count", len(files)))
	}))
	projectService := services.NewProjectService(reconciler, store, deps.Files)

	states := repositories.NewCatalogRepository[models.State](deps.DB, "name")
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(authService, cfg.IsProduction()),
		User:    handlers.NewUserHandler(userService, authService),
		Project: handlers.NewProjectHandler(projectService, cfg.Media.MaxUploadBytes),
		Site:    handlers.NewSiteHandler(cfg.Site),
		States: handlers.NewCatalogHandler(
			services.NewCatalogService[models.State](states, services.ValidateState),
			"state", func(s *models.State) *int64 { return &s.ID },
			handlers.WithSlugKey[models.State](), handlers.WithActiveFlag[models.State](),
		),
		Cities: handlers.NewCatalogHandler(
			services.NewCatalogService[models.City](
				repositories.NewCatalogRepository[models.City](deps.DB, "name", "State"),
				services.CityValidator(states),
			),
			"city", func(c *models.City) *int64 { return &c.ID },
			handlers.WithSlugKey[models.City](), handlers.WithActiveFlag[models.City](),
			handlers.WithFilter[models.City]("state_id", "state_id"),
		),
		Developers: handlers.NewCatalogHandler(
			services.NewCatalogService[models.Developer](
				repositories.NewCatalogRepository[models.Developer](deps.DB, "name"),
				services.ValidateDeveloper,
			),
			"developer", func(d *models.Developer) *int64 { return &d.ID },
			handlers.WithSlugKey[models.Developer](), handlers.WithActiveFlag[models.Developer](),
		),
		Amenities: handlers.NewCatalogHandler(
			services.NewCatalogService[models.Amenity](
				repositories.NewCatalogRepository[models.Amenity](deps.DB, "sort_order, name"),
				services.ValidateAmenity,
			),
			"amenity", func(a *models.Amenity) *int64 { return &a.ID },
			handlers.WithActiveFlag[models.Amenity](),
			handlers.WithFilter[models.Amenity]("category", "category"),
		),
		Testimonials: handlers.NewCatalogHandler(
			services.NewCatalogService[models.Testimonial](
				repositories.NewCatalogRepository[models.Testimonial](deps.DB, "created_at DESC"),
				services.ValidateTestimonial,
			),
			"testimonial", func(t *models.Testimonial) *int64 { return &t.ID },
			handlers.WithActiveFlag[models.Testimonial](),
		),
		Inquiries: handlers.NewCatalogHandler(
			services.NewCatalogService[models.ProjectInquiry](
				repositories.NewCatalogRepository[models.ProjectInquiry](deps.DB, "created_at DESC"),
				services.ValidateInquiry,
			),
			"inquiry", func(q *models.ProjectInquiry) *int64 { return &q.ID },
			handlers.WithFilter[models.ProjectInquiry]("project_id", "project_id"),
		),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware(log))
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDKey},
		ExposeHeaders:    []string{logger.RequestIDKey},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, h, middlewares.Authenticate(tokens, authService))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := deps.Pool.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "redis": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Uploads are served locally unless MEDIA_URL points elsewhere.
	if strings.HasPrefix(cfg.Media.BaseURL, "/") {
		router.Static(cfg.Media.BaseURL, deps.Files.Root())
	}

	return router
}
