package main

import (
	"github.com/hellosocial/backend/internal/router"
	"github.com/hellosocial/backend/internal/session"
	"github.com/hellosocial/backend/pkg/config"
	"github.com/hellosocial/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		logrus.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Session registry: in-memory by default, Redis when configured
	var registry session.Registry
	switch cfg.SessionBackend {
	case "redis":
		redisClient, err := config.InitRedis(cfg.RedisAddr)
		if err != nil {
			logrus.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer redisClient.Close()
		registry = session.NewRedisRegistry(redisClient)
	default:
		registry = session.NewMemoryRegistry()
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Validator
	e.Validator = validators.NewValidator()

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db.Postgres, db.Mongo, registry, cfg); err != nil {
		logrus.Fatalf("Failed to set up routes: %v", err)
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
