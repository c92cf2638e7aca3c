package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/raditya-pw/go-account-api/internal/application"
	"github.com/raditya-pw/go-account-api/internal/domain/entity"
	repo "github.com/raditya-pw/go-account-api/internal/domain/repository"
	"github.com/raditya-pw/go-account-api/internal/interface/middleware"
	"github.com/raditya-pw/go-account-api/pkg/apperr"
	"github.com/raditya-pw/go-account-api/pkg/response"
	"github.com/raditya-pw/go-account-api/pkg/validation"
)

type AccountHandler struct {
	Svc    *application.Service
	Audit  repo.AuditRepository
	Logger *logrus.Logger
}

func NewAccountHandler(svc *application.Service, audit repo.AuditRepository, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Svc: svc, Audit: audit, Logger: logger}
}

var registerSchema = validation.Schema{
	{Name: "email", Required: true, Rules: []validation.Rule{
		validation.EmailFormat{},
		validation.LengthBounds{Min: 6, Max: 100},
	}},
	{Name: "name", Required: true, Rules: []validation.Rule{
		validation.LengthBounds{Min: 1, Max: 100},
	}},
	{Name: "password", Required: true, Rules: []validation.Rule{
		validation.Password{MinLength: 8, Upper: true, Lower: true, Digit: true},
	}},
}

var loginSchema = validation.Schema{
	{Name: "email", Required: true, Rules: []validation.Rule{
		validation.EmailFormat{},
	}},
	{Name: "password", Required: true, Rules: []validation.Rule{
		validation.LengthBounds{Min: 1, Max: 100},
	}},
}

var updateProfileSchema = validation.Schema{
	{Name: "name", Rules: []validation.Rule{
		validation.LengthBounds{Min: 1, Max: 100},
	}},
	{Name: "is_active", Rules: []validation.Rule{
		validation.Custom{Check: func(v any) string {
			if _, ok := v.(bool); !ok {
				return "must be a boolean"
			}
			return ""
		}},
	}},
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// audit writes a best-effort trail entry; failures are logged, never surfaced.
func (h *AccountHandler) audit(c *gin.Context, accountID, email, action string, metadata map[string]any) {
	if h.Audit == nil {
		return
	}
	e := &entity.AuditLog{
		AccountID: accountID,
		Email:     email,
		Action:    action,
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
		Metadata:  metadata,
	}
	if err := h.Audit.Insert(c.Request.Context(), e); err != nil && h.Logger != nil {
		h.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}

// bindPayload decodes the sanitized JSON body and runs the schema, returning
// the payload or writing the validation failure itself.
func (h *AccountHandler) bindPayload(c *gin.Context, schema validation.Schema) (map[string]any, bool) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.AppError(c, apperr.ValidationFailed([]string{"payload must be a JSON object"}))
		return nil, false
	}
	if violations := schema.Validate(payload); len(violations) > 0 {
		response.AppError(c, apperr.ValidationFailed(violations))
		return nil, false
	}
	return payload, true
}

func str(payload map[string]any, key string) string {
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}

// Register POST /api/register
func (h *AccountHandler) Register(c *gin.Context) {
	payload, ok := h.bindPayload(c, registerSchema)
	if !ok {
		return
	}

	res, err := h.Svc.Register(c.Request.Context(), str(payload, "email"), str(payload, "name"), str(payload, "password"))
	if err != nil {
		h.audit(c, "", str(payload, "email"), "register_failed", nil)
		response.AppError(c, err)
		return
	}

	h.audit(c, res.Account.ID, res.Account.Email, "register", nil)
	response.Success(c, http.StatusCreated, res, "account registered")
}

// Login POST /api/login
func (h *AccountHandler) Login(c *gin.Context) {
	payload, ok := h.bindPayload(c, loginSchema)
	if !ok {
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), str(payload, "email"), str(payload, "password"))
	if err != nil {
		h.audit(c, "", str(payload, "email"), "login_failed", nil)
		response.AppError(c, err)
		return
	}

	h.audit(c, res.Account.ID, res.Account.Email, "login", nil)
	response.Success(c, http.StatusOK, res, "login successful")
}

// GetProfile GET /api/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	sum, err := h.Svc.GetProfile(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum, "profile")
}

// UpdateProfile PUT /api/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	payload, ok := h.bindPayload(c, updateProfileSchema)
	if !ok {
		return
	}

	sum, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxAccountIDKey), payload)
	if err != nil {
		response.AppError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum, "profile updated")
}

// Logout POST /api/logout
func (h *AccountHandler) Logout(c *gin.Context) {
	id := c.GetString(middleware.CtxAccountIDKey)
	if err := h.Svc.Logout(c.Request.Context(), id); err != nil {
		response.AppError(c, err)
		return
	}
	h.audit(c, id, "", "logout", nil)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out")
}

// DeleteAccount DELETE /api/account
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id := c.GetString(middleware.CtxAccountIDKey)
	deletedAt, err := h.Svc.SoftDelete(c.Request.Context(), id)
	if err != nil {
		response.AppError(c, err)
		return
	}
	h.audit(c, id, "", "account_deleted", nil)
	response.Success[any](c, http.StatusOK, gin.H{"deleted_at": deletedAt}, "account deleted")
}
