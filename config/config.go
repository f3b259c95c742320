package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ItsHariii/EmoryHacks/models"
)

type Config struct {
	Port              string
	DatabaseURL       string
	SpoonacularAPIKey string
	USDAAPIKey        string
}

// Load reads configuration from the environment, with .env as a convenience
// for local development. A missing .env file is not an error.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              os.Getenv("PORT"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SpoonacularAPIKey: os.Getenv("SPOONACULAR_API_KEY"),
		USDAAPIKey:        os.Getenv("USDA_API_KEY"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	return cfg
}

// InitDB opens the Postgres connection and migrates the schema.
// TranslateError is enabled so unique-constraint violations surface as
// gorm.ErrDuplicatedKey, which the cache service relies on to resolve
// concurrent-insert races.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Food{},
		&models.Ingredient{},
		&models.FoodLog{},
	); err != nil {
		return nil, fmt.Errorf("auto-migrate failed: %w", err)
	}
	return db, nil
}
