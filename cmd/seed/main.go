package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/fraudwatch/config"
	pginfra "github.com/oksasatya/fraudwatch/internal/infrastructure/postgres"
	"github.com/oksasatya/fraudwatch/pkg/helpers"
)

// seed creates a demo account. Running it again leaves the existing row untouched.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	email := getenv("SEED_EMAIL", "demo@fraudwatch.local")
	password := getenv("SEED_PASSWORD", "password123")
	name := getenv("SEED_NAME", "Demo Analyst")

	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}

	tag, err := pool.Exec(ctx, `
		INSERT INTO users (email, password_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
	`, email, hash, name)
	if err != nil {
		logger.Fatalf("failed to seed user: %v", err)
	}
	if tag.RowsAffected() == 0 {
		logger.WithField("email", email).Info("demo user already present")
		return
	}
	logger.WithField("email", email).Info("seeded demo user")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
