package main

import (
	"context"
	"log"

	_ "backend/api/swagger" // swagger docs
	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/mail"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/tokens"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Journal Registry API
// @version         1.0
// @description     Catalog API for scholarly journal metadata with role-gated access and IP-based trust elevation.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	whitelistRepo := repository.NewIPWhitelistRepository(db)
	journalRepo := repository.NewJournalRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := mail.NewSMTPMailer(cfg)
	txManager := repository.NewTransactionManager(db)

	roleService := service.NewRoleService(roleRepo)
	whitelistService := service.NewIPWhitelistService(whitelistRepo)
	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, roleService, whitelistService, tokenSvc, mailer, auditService, txManager, cfg)
	userService := service.NewUserService(userRepo, roleService)
	journalService := service.NewJournalService(journalRepo)

	// The well-known guest <- user <- admin chain must exist before any
	// registration or login can be served.
	if err := roleService.SeedDefaultRoles(context.Background()); err != nil {
		log.Fatalf("Failed to seed default roles: %v", err)
	}

	middleware.Init(tokenSvc, userRepo, roleService)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	roleHandler := handler.NewRoleHandler(roleService)
	whitelistHandler := handler.NewIPWhitelistHandler(whitelistService, auditService)
	userHandler := handler.NewUserHandler(userService)
	journalHandler := handler.NewJournalHandler(journalService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// When not behind a reverse proxy, forwarded-for headers must not be able
	// to spoof the client address used for whitelist checks.
	if !cfg.TrustProxyHeader {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Fatalf("Failed to configure trusted proxies: %v", err)
		}
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	roleHandler.RegisterRoutes(router.Group(""))
	whitelistHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	journalHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
