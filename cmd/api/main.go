package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/archmap/archmap-backend/internal/config"
	"github.com/archmap/archmap-backend/internal/handler"
	"github.com/archmap/archmap-backend/internal/middleware"
	"github.com/archmap/archmap-backend/internal/migration"
	"github.com/archmap/archmap-backend/internal/repository"
	"github.com/archmap/archmap-backend/internal/routes"
	"github.com/archmap/archmap-backend/internal/service"
	pkgcache "github.com/archmap/archmap-backend/pkg/cache"
	"github.com/archmap/archmap-backend/pkg/jwt"
	pkglogger "github.com/archmap/archmap-backend/pkg/logger"
	pkgredis "github.com/archmap/archmap-backend/pkg/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	dotenvFiles := config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	pkglogger.GetLogger().Info().
		Str("env", env).
		Strs("env_files", dotenvFiles).
		Msg("starting archmap-backend")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.GetLogger().Info().Str("host", cfg.Database.Host).Msg("connected to MySQL")

	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Redis is optional: lock listings fall back to the database
	var cacheService pkgcache.Service
	redisClient, err := pkgredis.NewClient(pkgredis.Options{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("Redis unavailable, continuing without cache")
	} else {
		cacheService = pkgcache.NewService(redisClient)
		pkglogger.GetLogger().Info().Str("host", cfg.Redis.Host).Msg("connected to Redis")
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	// Repositories
	versionRepo := repository.NewVersionRepository(db)
	lockRepo := repository.NewLockRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	initiativeRepo := repository.NewInitiativeRepository(db)
	dependencyRepo := repository.NewDependencyRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	versionSvc := service.NewVersionControlService(db, versionRepo, lockRepo, initiativeRepo, cacheService)
	conflictSvc := service.NewConflictService(versionRepo, conflictRepo, dependencyRepo)
	resolutionSvc := service.NewResolutionService(db, versionRepo, conflictRepo, conflictSvc)
	initiativeSvc := service.NewInitiativeService(db, initiativeRepo, versionRepo, lockRepo, conflictRepo, cacheService)
	auditSvc := service.NewAuditService(auditRepo, versionRepo, initiativeRepo)

	// Handlers
	versionHandler := handler.NewVersionControlHandler(versionSvc)
	initiativeHandler := handler.NewInitiativeHandler(initiativeSvc, conflictSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc, resolutionSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	dependencyHandler := handler.NewDependencyHandler(dependencyRepo, versionRepo)

	if env != "local" && env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	allowOrigins := cfg.CORS.AllowOrigins
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}))

	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	routes.Setup(router, versionHandler, initiativeHandler, conflictHandler, auditHandler, dependencyHandler, jwtManager, cacheService)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	pkglogger.GetLogger().Info().Str("addr", addr).Msg("listening")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}

// initDB opens the MySQL connection. TranslateError is required so a
// duplicate lock insert surfaces as gorm.ErrDuplicatedKey.
func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}
