package main

import (
	"fmt"
	"log"
	"time"

	"SlideLab/server/internal/api/gateway"
	"SlideLab/server/internal/config"
	"SlideLab/server/internal/services/attack"
	"SlideLab/server/internal/services/auth"
	"SlideLab/server/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()
	fmt.Println("Configuration loaded:")
	fmt.Println(cfg)

	cipher, err := cfg.Cipher.BuildCipher()
	if err != nil {
		log.Fatalf("Invalid cipher configuration: %v", err)
	}
	confirmLimit, err := cfg.Cipher.ConfirmLimitValue()
	if err != nil {
		log.Fatalf("Invalid cipher configuration: %v", err)
	}

	var store attack.Store
	if cfg.Database.Driver == "memory" {
		store = storage.NewMemory()
		fmt.Println("Using in-memory storage")
	} else {
		db := connectWithRetries(storage.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
			SSLMode:  cfg.Database.SSLMode,
		})
		defer db.Close()

		// Initialize database schema
		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize database schema: %v", err)
		}
		fmt.Println("Database schema initialized")
		store = db
	}

	// Create services
	authService := auth.New(cfg.Auth.JWTSecret, cfg.Auth.OperatorPasswordHash)
	attackService := attack.NewService(store, cipher, confirmLimit)
	if cfg.Auth.OperatorPasswordHash == "" {
		log.Printf("Warning: OPERATOR_PASSWORD_HASH is empty, operator endpoints are unreachable")
	}

	// Create gateway server with services
	gatewayServer := gateway.New(
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		authService,
		attackService,
	)

	// Start gateway server
	if err := gatewayServer.Start(); err != nil {
		log.Fatalf("Gateway server failed: %v", err)
	}
}

// connectWithRetries waits for the database to come up
func connectWithRetries(dbConfig storage.Config) *storage.DB {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for attempt := 1; ; attempt++ {
		db, err := storage.New(dbConfig)
		if err == nil {
			fmt.Printf("✓ Connected to database (attempt %d)\n", attempt)
			return db
		}

		if attempt >= maxRetries {
			log.Fatalf("Failed to connect to database after %d attempts: %v", maxRetries, err)
		}
		fmt.Printf("✗ Failed to connect to database (attempt %d/%d): %v\n", attempt, maxRetries, err)
		fmt.Printf("  Retrying in %v...\n", retryDelay)
		time.Sleep(retryDelay)
	}
}
