package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SrebrinSharbanov/ControlCards/internal/config"
	"github.com/SrebrinSharbanov/ControlCards/internal/entity"
	"github.com/SrebrinSharbanov/ControlCards/internal/handler"
	"github.com/SrebrinSharbanov/ControlCards/internal/middleware"
	"github.com/SrebrinSharbanov/ControlCards/internal/repository"
	"github.com/SrebrinSharbanov/ControlCards/internal/schedule"
	"github.com/SrebrinSharbanov/ControlCards/internal/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting controlcards service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.Workshop{},
		&entity.WorkCenter{},
		&entity.User{},
		&entity.UserWorkshop{},
		&entity.Card{},
		&entity.ArchivedCard{},
		&entity.LogEntry{},
	); err != nil {
		zapLogger.Warn("AutoMigrate warning", zap.Error(err))
	}

	migrationSQL := []string{
		"CREATE INDEX IF NOT EXISTS idx_cards_workshop_status ON cards(workshop_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_archived_cards_workshop ON archived_cards(workshop_id)",
		"CREATE INDEX IF NOT EXISTS idx_log_entries_created_at ON log_entries(created_at)",
	}
	for _, sql := range migrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			zapLogger.Warn("Migration SQL warning (may already exist)", zap.String("sql", sql), zap.Error(err))
		}
	}
	zapLogger.Info("Database migration completed")

	seedAdmin(db, zapLogger)

	rdb := initRedis(cfg.Redis)

	repos := repository.NewRepositories(db)
	scheduleClient := schedule.NewClient(cfg.Schedule.BaseURL, cfg.Schedule.APIKey)
	services := service.NewServices(
		repos, zapLogger,
		cfg.JWT.Secret, cfg.JWT.AccessTokenExpire,
		scheduleClient, rdb, cfg.Schedule.CacheTTL,
	)
	handlers := handler.NewHandlers(services)

	// Audit log retention sweep.
	retentionCtx, stopRetention := context.WithCancel(context.Background())
	defer stopRetention()
	go services.LogEntry.RunRetention(retentionCtx, cfg.Log.RetentionDays, cfg.Log.SweepInterval)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")
	stopRetention()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

// seedAdmin creates the bootstrap admin account if no users exist. The
// password comes from ADMIN_PASSWORD and defaults to a value that must be
// changed on first login.
func seedAdmin(db *gorm.DB, zapLogger *zap.Logger) {
	var count int64
	if err := db.Model(&entity.User{}).Count(&count).Error; err != nil || count > 0 {
		return
	}
	password := config.GetEnvOrDefault("ADMIN_PASSWORD", "admin123")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		zapLogger.Warn("Failed to hash admin password", zap.Error(err))
		return
	}
	admin := &entity.User{
		ID:        uuid.New().String()[:32],
		Username:  "admin",
		Password:  string(hash),
		FirstName: "Admin",
		LastName:  "",
		Role:      entity.RoleAdmin,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(admin).Error; err != nil {
		zapLogger.Warn("Failed to seed admin account", zap.Error(err))
		return
	}
	zapLogger.Info("Seeded bootstrap admin account", zap.String("username", admin.Username))
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		// Login is the only unauthenticated endpoint.
		v1.POST("/auth/login", h.Auth.Login)

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/auth/me", h.Auth.Me)

			cards := authorized.Group("/cards")
			{
				cards.GET("", h.Card.List)
				cards.GET("/archive/export", middleware.RequireRoles(entity.RoleProductionManager), h.Card.ExportArchive)
				cards.GET("/:id", h.Card.Get)
				cards.GET("/:id/abilities", h.Card.Abilities)
				cards.POST("", middleware.RequireRoles(entity.RoleWorker), h.Card.Create)
				cards.POST("/:id/extend", middleware.RequireRoles(entity.RoleTechnician), h.Card.Extend)
				cards.POST("/:id/close", middleware.RequireRoles(entity.RoleManager, entity.RoleProductionManager), h.Card.Close)
				cards.POST("/:id/archive", middleware.RequireRoles(entity.RoleProductionManager), h.Card.Archive)
			}

			authorized.GET("/dashboard/counts", h.Dashboard.Counts)

			workshops := authorized.Group("/workshops")
			{
				workshops.GET("", h.Workshop.ListWorkshops)
				workshops.GET("/:id", h.Workshop.GetWorkshop)
				workshops.POST("", middleware.RequireRoles(), h.Workshop.CreateWorkshop)
				workshops.PUT("/:id", middleware.RequireRoles(), h.Workshop.UpdateWorkshop)
			}

			workCenters := authorized.Group("/work-centers")
			{
				workCenters.GET("", h.Workshop.ListWorkCenters)
				workCenters.GET("/:id", h.Workshop.GetWorkCenter)
				workCenters.POST("", middleware.RequireRoles(), h.Workshop.CreateWorkCenter)
				workCenters.PUT("/:id", middleware.RequireRoles(), h.Workshop.UpdateWorkCenter)
			}

			users := authorized.Group("/users")
			users.Use(middleware.RequireRoles())
			{
				users.GET("", h.User.List)
				users.GET("/:id", h.User.Get)
				users.POST("", h.User.Create)
				users.PUT("/:id", h.User.Update)
			}

			authorized.GET("/logs", middleware.RequireRoles(), h.User.Logs)

			authorized.PUT("/profile", h.User.UpdateProfile)

			schedules := authorized.Group("/schedules")
			{
				schedules.GET("", h.Schedule.List)
				schedules.GET("/:id", h.Schedule.Get)
				schedules.POST("", middleware.RequireRoles(entity.RoleProductionManager), h.Schedule.Create)
				schedules.PUT("/:id", middleware.RequireRoles(entity.RoleProductionManager), h.Schedule.Update)
				schedules.DELETE("/:id", middleware.RequireRoles(entity.RoleProductionManager), h.Schedule.Delete)
			}
		}
	}
}
