// Package http wires repositories, use cases, handlers, and middleware into
// the gin engine.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	licenseapp "skillforge/internal/application/license"
	"skillforge/internal/application/partner/usecases"
	"skillforge/internal/domain/license"
	"skillforge/internal/infrastructure/auth"
	"skillforge/internal/infrastructure/cache"
	"skillforge/internal/infrastructure/config"
	"skillforge/internal/infrastructure/identity"
	"skillforge/internal/infrastructure/repository"
	"skillforge/internal/interfaces/http/handlers"
	"skillforge/internal/interfaces/http/middleware"
	"skillforge/internal/shared/db"
	"skillforge/internal/shared/logger"
)

// Router holds the configured engine and the handlers it dispatches to.
type Router struct {
	engine            *gin.Engine
	cfg               *config.Config
	partnerHandler    *handlers.PartnerHandler
	licenseHandler    *handlers.LicenseHandler
	authMiddleware    *middleware.AuthMiddleware
	licenseMiddleware *middleware.LicenseMiddleware
	redisClient       *redis.Client
	log               logger.Interface
}

// NewRouter creates the HTTP router with all dependencies wired.
func NewRouter(gdb *gorm.DB, cfg *config.Config, log logger.Interface) *Router {
	engine := gin.New()

	txm := db.NewTransactionManager(gdb)

	applicationRepo := repository.NewApplicationRepository(gdb, log)
	partnerRepo := repository.NewPartnerRepository(gdb, txm, log)
	profileRepo := repository.NewProfileRepository(gdb, log)
	licenseRepo := repository.NewLicenseRepository(gdb, log)
	violationRepo := repository.NewViolationRepository(gdb, log)
	notificationRepo := repository.NewNotificationRepository(gdb, log)

	identityClient := identity.NewClient(&cfg.Identity, log)

	// The license read path goes through redis when enabled; otherwise
	// straight to the database.
	var licenseReader licenseapp.Reader = licenseRepo
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := time.Duration(cfg.License.CacheTTLSeconds) * time.Second
		licenseReader = cache.NewLicenseCache(redisClient, licenseRepo, ttl, log)
	}

	gate := licenseapp.NewService(licenseReader, profileRepo, violationRepo, log)

	approveUC := usecases.NewApproveApplicationUseCase(
		applicationRepo, partnerRepo, profileRepo, identityClient,
		notificationRepo, cfg.Server.PortalLoginURL, log,
	)
	rejectUC := usecases.NewRejectApplicationUseCase(applicationRepo, profileRepo, notificationRepo, log)
	getUC := usecases.NewGetApplicationUseCase(applicationRepo, partnerRepo, profileRepo, log)
	listUC := usecases.NewListApplicationsUseCase(applicationRepo, profileRepo, log)

	partnerHandler := handlers.NewPartnerHandler(approveUC, rejectUC, getUC, listUC, log)
	licenseHandler := handlers.NewLicenseHandler(gate, log)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes, cfg.Auth.JWT.RefreshExpDays)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, log)
	licenseMiddleware := middleware.NewLicenseMiddleware(gate, log)

	return &Router{
		engine:            engine,
		cfg:               cfg,
		partnerHandler:    partnerHandler,
		licenseHandler:    licenseHandler,
		authMiddleware:    authMiddleware,
		licenseMiddleware: licenseMiddleware,
		redisClient:       redisClient,
		log:               log,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Correlation())
	r.engine.Use(middleware.CustomLogger(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	api.Use(r.authMiddleware.RequireAuth())
	api.Use(r.authMiddleware.RequireTenant())
	{
		applications := api.Group("/partner/applications")
		applications.Use(r.licenseMiddleware.RequireLicense(license.FeaturePartnerApproval))
		{
			applications.GET("", r.partnerHandler.ListApplications)
			applications.GET("/:id", r.partnerHandler.GetApplication)
			applications.POST("/:id/approve", r.partnerHandler.ApproveApplication)
			applications.POST("/:id/reject", r.partnerHandler.RejectApplication)
		}

		api.GET("/license", r.licenseHandler.GetLicense)
		api.GET("/license/user-limit", r.licenseHandler.GetUserLimit)
		api.GET("/admin/license-violations", r.licenseHandler.ListViolations)
	}
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}

// Close releases long-lived connections held by the router's wiring.
func (r *Router) Close() error {
	if r.redisClient != nil {
		return r.redisClient.Close()
	}
	return nil
}
