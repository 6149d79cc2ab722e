package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/picstream/backend/internal/feed"
	"github.com/picstream/backend/internal/handlers"
	"github.com/picstream/backend/internal/middleware"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

// Deps carries everything the routes need. FirebaseAuth and Cache are
// optional.
type Deps struct {
	Store        *repositories.Store
	Logger       *zap.Logger
	JWTSecret    string
	UploadDir    string
	FirebaseAuth *auth.Client
	Cache        *feed.Cache
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	assembler := feed.New(d.Store.Users, d.Store.Comments, d.Cache, logger)

	e.GET("/health", handlers.HealthCheck)
	e.Static("/uploads", d.UploadDir)

	authHandler := handlers.NewAuthHandler(d.Store, d.FirebaseAuth, d.JWTSecret, logger)
	userHandler := handlers.NewUserHandler(d.Store, assembler, d.Cache, logger)
	followHandler := handlers.NewFollowHandler(d.Store, logger)
	postHandler := handlers.NewPostHandler(d.Store, assembler, d.UploadDir, logger)
	commentHandler := handlers.NewCommentHandler(d.Store, assembler, logger)

	// Unauthenticated surface
	authHandler.RegisterAuthRoutes(e.Group("/api/auth"))
	public := e.Group("/api")
	userHandler.RegisterPublicRoutes(public)
	postHandler.RegisterPublicRoutes(public)
	commentHandler.RegisterPublicRoutes(public)

	// Everything below requires a valid bearer token
	api := e.Group("/api")
	api.Use(middleware.JWTAuth(d.JWTSecret))
	authHandler.RegisterMeRoute(api)
	userHandler.RegisterRoutes(api)
	followHandler.RegisterRoutes(api)
	postHandler.RegisterRoutes(api)
	commentHandler.RegisterRoutes(api)

	logger.Info("routes configured")
}
