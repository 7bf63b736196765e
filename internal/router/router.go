package router

import (
	"github.com/hellosocial/backend/internal/handlers"
	"github.com/hellosocial/backend/internal/middleware"
	"github.com/hellosocial/backend/internal/models"
	"github.com/hellosocial/backend/internal/repositories"
	"github.com/hellosocial/backend/internal/services"
	"github.com/hellosocial/backend/internal/session"
	"github.com/hellosocial/backend/pkg/config"
	"github.com/hellosocial/backend/pkg/filestore"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logrus.WithFields(logrus.Fields{
				"method": v.Method,
				"uri":    v.URI,
				"status": v.Status,
			}).Info("request")
			return nil
		},
	}))
	logrus.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, registry session.Registry, cfg *config.Config) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Relationship{},
	)
	if err != nil {
		return err
	}
	logrus.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(pgdb)

	fileStore, err := filestore.NewGridFSStore(mgClient.Database("hellosocial"))
	if err != nil {
		return err
	}

	// --- Initialize Services ---
	loginService := services.NewLoginService(userRepo, registry, cfg.SessionTTL)
	friendshipService := services.NewFriendshipService(relationshipRepo)

	sessionAuth := middleware.SessionAuthMiddleware(loginService)

	// --- Account routes (signup, idcheck, login, logout are unprotected) ---
	users := e.Group("/users")
	userHandler := handlers.NewUserHandler(userRepo, loginService, fileStore)
	userHandler.RegisterUserRoutes(users)

	account := users.Group("/account")
	account.Use(sessionAuth)
	userHandler.RegisterAccountRoutes(account)
	logrus.Info("User routes configured.")

	// --- Friendship routes (require a live session) ---
	myFriends := e.Group("/my-friends")
	myFriends.Use(sessionAuth)
	friendshipHandler := handlers.NewFriendshipHandler(friendshipService, userRepo)
	friendshipHandler.RegisterFriendshipRoutes(myFriends)
	logrus.Info("Friendship routes configured.")

	logrus.Info("All routes configured.")
	return nil
}
