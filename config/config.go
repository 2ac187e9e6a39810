package config

import (
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config holds every environment-driven setting the process needs.
type Config struct {
	DatabaseDSN string
	Port        string
	FrontendURL string

	StripeAPIKey        string
	StripeWebhookSecret string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	AuthIssuer   string
	AuthAudience string
	AuthSecret   string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads configuration from the environment, loading .env first if present.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		DatabaseDSN: getenv("DATABASE_DSN", "root:root@tcp(localhost:3306)/food_ordering?charset=utf8mb4&parseTime=True&loc=Local"),
		Port:        getenv("PORT", "8080"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:5173"),

		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		AuthIssuer:   getenv("AUTH_ISSUER", "https://food-ordering.example.com/"),
		AuthAudience: getenv("AUTH_AUDIENCE", "food-ordering-api"),
		AuthSecret:   os.Getenv("AUTH_SECRET"),
	}
}

// InitDB opens the MySQL connection used in production.
func InitDB(cfg Config) (*gorm.DB, error) {
	return gorm.Open(mysql.Open(cfg.DatabaseDSN), &gorm.Config{})
}
