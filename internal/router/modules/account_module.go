package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/raditya-pw/go-account-api/config"
	"github.com/raditya-pw/go-account-api/internal/application"
	handlers "github.com/raditya-pw/go-account-api/internal/interface/http"
	"github.com/raditya-pw/go-account-api/internal/interface/middleware"
)

// AccountModule wires the account endpoints and their gatekeeping chain.
// Public: POST /api/register, POST /api/login — strict limiter + slow-down.
// Protected: GET/PUT /api/profile, POST /api/logout, DELETE /api/account.
// Mutating routes pass the body sanitizer before any binding.
type AccountModule struct {
	Handler *handlers.AccountHandler
	Svc     *application.Service
	Redis   *redis.Client
	Cfg     *config.Config
}

func NewAccountModule(h *handlers.AccountHandler, svc *application.Service, rdb *redis.Client, cfg *config.Config) *AccountModule {
	return &AccountModule{Handler: h, Svc: svc, Redis: rdb, Cfg: cfg}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.Cfg.Env == "development" {
		allow = middleware.AllowPrivateIP()
	}

	authLimiter := middleware.RateLimit(m.Redis, m.Cfg.AuthRateMax, m.Cfg.RateWindow, middleware.KeyByIPAndPath(), allow)
	slowDown := middleware.SlowDown(m.Redis, m.Cfg.SlowDownAfter, m.Cfg.SlowDownStep, m.Cfg.SlowDownMax, m.Cfg.RateWindow, middleware.KeyByIP())
	sanitize := middleware.SanitizeBody()

	rg.POST("/register", slowDown, authLimiter, sanitize, m.Handler.Register)
	rg.POST("/login", slowDown, authLimiter, sanitize, m.Handler.Login)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Svc))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", sanitize, m.Handler.UpdateProfile)
		auth.POST("/logout", m.Handler.Logout)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
