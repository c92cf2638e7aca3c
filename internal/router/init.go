package router

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/raditya-pw/go-account-api/config"
	"github.com/raditya-pw/go-account-api/internal/application"
	"github.com/raditya-pw/go-account-api/internal/infrastructure/postgres"
	handlers "github.com/raditya-pw/go-account-api/internal/interface/http"
	"github.com/raditya-pw/go-account-api/internal/router/modules"
	"github.com/raditya-pw/go-account-api/pkg/helpers"
)

// Deps carries the process-wide singletons built in main. Modules receive what
// they need explicitly; nothing reads ambient global state.
type Deps struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher
}

// InitModules wires the account module and registers it with the registry.
// Called once during startup.
func InitModules(r *Registry, d Deps) {
	accountRepo := postgres.NewAccountRepository(d.Pool, d.Cfg.DBQueryTimeout)
	auditRepo := postgres.NewAuditRepository(d.Pool)

	svc := application.NewService(accountRepo, d.JWT, d.Hasher, d.Logger)
	handler := handlers.NewAccountHandler(svc, auditRepo, d.Logger)

	r.Add(modules.NewAccountModule(handler, svc, d.Redis, d.Cfg))
}
