package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"expensely/internal/clock"
	"expensely/internal/config"
	"expensely/internal/database"
	"expensely/internal/lock"
	"expensely/internal/logger"
	"expensely/internal/repository"
	"expensely/internal/server"
	"expensely/internal/services"
	"expensely/internal/validator"
)

// @title           Expensely API
// @version         1.0
// @description     Expensely tracks employee expenses from draft through submission to manager approval or rejection.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(database.DefaultMigrationsDir); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	locker, err := newLocker(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create expense locker: %w", err)
	}

	db := dbManager.DB()
	repos := repository.New(db)
	clk := clock.System{}

	categoryService := services.NewCategoryService(repos.Categories)
	seeded, err := categoryService.EnsureDefaultCategories(context.Background())
	if err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	if seeded > 0 {
		log.Infow("seeded default categories", "count", seeded)
	}

	validator.Register()

	production := appConfig.Env == "production"
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := server.NewRouter(server.Services{
		Users:      services.NewUserService(repos.Users, clk),
		Categories: categoryService,
		Expenses:   services.NewExpenseService(repos, locker, clk),
		Reports:    services.NewReportService(repos),
		Audit:      services.NewAuditService(repos),
	}, server.Options{
		AdminAPIKey:    appConfig.AdminAPIKey,
		RequestLogging: true,
		Swagger:        !production,
	})

	log.Infof("Starting Expensely server on port %s", appConfig.Port)
	if !production {
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	}
	return router.Run(":" + appConfig.Port)
}

// newLocker serializes expense writes across instances through Redis when
// REDIS_ADDR is set, and within this process otherwise.
func newLocker(cfg *config.Config) (lock.Locker, error) {
	if cfg.RedisAddr == "" {
		logger.Get().Info("REDIS_ADDR not set, using in-process expense locks")
		return lock.NewLocal(), nil
	}

	opts := lock.DefaultOptions()
	opts.Expiry = cfg.LockExpiry
	return lock.NewRedis(lock.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), opts)
}
