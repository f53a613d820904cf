package main

// @title Bank Reconciliation API
// @version 1.0
// @description Imports bank statements, reconciles them against the ledger and books bank adjustments

// @contact.name API Support

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"fmt"
	"log"
	"net/http"

	"github.com/limistah/bank-reconciliation/docs"
	"github.com/limistah/bank-reconciliation/internal/auth"
	"github.com/limistah/bank-reconciliation/internal/config"
	"github.com/limistah/bank-reconciliation/internal/database"
	"github.com/limistah/bank-reconciliation/internal/repositories"
	"github.com/limistah/bank-reconciliation/internal/routes"
	"github.com/limistah/bank-reconciliation/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.LoadConfig()
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	repos := repositories.NewRepositories(db)

	opts := usecases.OptionsFromConfig(cfg)
	if err := opts.Policy.Validate(); err != nil {
		log.Fatal("Invalid matching configuration: ", err)
	}
	useCases := usecases.NewUseCases(repos, opts)

	jwtService := auth.NewJWTService(cfg.App.JWTSecret, cfg.App.JWTIssuer)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, db, useCases, jwtService, cfg.Server.MaxUploadBytes)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s:%s in %s mode",
		cfg.Server.Host, cfg.Server.Port, cfg.App.Environment)
	log.Printf("Swagger UI available at: http://%s:%s/swagger/index.html",
		cfg.Server.Host, cfg.Server.Port)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Failed to start server:", err)
	}
}
