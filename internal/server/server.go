package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/platefull/backend/config"
	"github.com/platefull/backend/internal/api"
	"github.com/platefull/backend/internal/middleware"
	"github.com/platefull/backend/internal/router"
	"github.com/platefull/backend/internal/service"
)

// Server wires the services and handlers together and owns the HTTP
// listener lifecycle.
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New assembles the full application. redisClient may be nil; imageStore
// decides where decoded uploads land (S3 or local disk).
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, imageStore service.ImageStore) *Server {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	imageService := service.NewImageService(imageStore)

	recipeService := service.NewRecipeService(db)
	relationService := service.NewRelationService(db)
	shoppingListService := service.NewShoppingListService(db)
	shortLinkService := service.NewShortLinkService(db, redisClient)
	userService := service.NewUserService(db, imageService)
	catalogService := service.NewCatalogService(db)

	var rateLimiter *middleware.RateLimiter
	if redisClient != nil {
		rateLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
	}

	mediaDir := ""
	if cfg.S3Bucket == "" {
		mediaDir = cfg.MediaDir
	}

	engine := router.Setup(
		api.NewAuthHandler(authService),
		api.NewUserHandler(userService, relationService),
		api.NewCatalogHandler(catalogService),
		api.NewRecipeHandler(recipeService, relationService, shoppingListService, shortLinkService, imageService, cfg.SiteDomain),
		authService,
		rateLimiter,
		mediaDir,
	)

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: engine,
		},
	}
}

// Start blocks serving HTTP until the listener fails or is shut down.
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
