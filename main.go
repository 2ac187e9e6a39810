package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/buitrongtan91/mern-food-ordering-app-backend/config"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/models"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/router"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/services"
	"github.com/buitrongtan91/mern-food-ordering-app-backend/utils"
)

func main() {
	utils.InitLogger()

	cfg := config.Load()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	stripeCfg := &services.StripeConfig{
		APIKey:        cfg.StripeAPIKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		FrontendURL:   cfg.FrontendURL,
	}
	if err := stripeCfg.ValidateConfig(); err != nil {
		utils.ErrorLogger.Fatalf("Stripe configuration invalid: %v", err)
	}
	gateway := services.NewStripeService(stripeCfg)

	uploader, err := services.NewCloudinaryService(&services.CloudinaryConfig{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	})
	if err != nil {
		utils.ErrorLogger.Fatalf("Cloudinary configuration invalid: %v", err)
	}

	r := router.SetupRouter(db, cfg, gateway, uploader)

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderCartItem{},
		&models.PaymentEvent{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
