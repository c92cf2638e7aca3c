package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/raditya-pw/go-account-api/config"
	"github.com/raditya-pw/go-account-api/internal/application"
	pginfra "github.com/raditya-pw/go-account-api/internal/infrastructure/postgres"
	"github.com/raditya-pw/go-account-api/pkg/helpers"
)

// Seeds a demo account through the lifecycle engine so local clients have
// working credentials. Registering an email that already exists fails with a
// conflict; re-run after deleting the account if you need fresh tokens.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife, cfg.DBAcquireTimeout)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewAccountRepository(pool, cfg.DBQueryTimeout)
	jwtManager := helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	hasher := helpers.NewPasswordHasher(cfg.BcryptCost)
	svc := application.NewService(repo, jwtManager, hasher, logger)

	email := "demo@example.com"
	password := "Demo-Passw0rd"
	res, err := svc.Register(ctx, email, "Demo Account", password)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: id=%s email=%s password=%s\n", res.Account.ID, res.Account.Email, password)
	fmt.Printf("access token: %s\n", res.AccessToken)
}
