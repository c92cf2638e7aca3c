package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raditya-pw/go-account-api/internal/application"
	"github.com/raditya-pw/go-account-api/internal/domain/entity"
	repo "github.com/raditya-pw/go-account-api/internal/domain/repository"
	"github.com/raditya-pw/go-account-api/internal/interface/middleware"
	"github.com/raditya-pw/go-account-api/pkg/helpers"
)

// fakeRepo backs the handler tests without a database.
type fakeRepo struct {
	accounts map[string]*entity.Account
}

func (f *fakeRepo) InTx(_ context.Context, fn func(repo.AccountRepository) error) error {
	return fn(f)
}

func (f *fakeRepo) Create(_ context.Context, a *entity.Account) error {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	cp := *a
	f.accounts[a.ID] = &cp
	return nil
}

func (f *fakeRepo) live(id string) *entity.Account {
	a := f.accounts[id]
	if a == nil || a.IsDeleted {
		return nil
	}
	return a
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*entity.Account, error) {
	if a := f.live(id); a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email && !a.IsDeleted {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *fakeRepo) EmailExists(_ context.Context, email string) (bool, error) {
	for _, a := range f.accounts {
		if a.Email == email && !a.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) UpdateTokens(_ context.Context, id string, access, refresh *string) error {
	a := f.live(id)
	if a == nil {
		return repo.ErrNotFound
	}
	a.AccessToken = access
	a.RefreshToken = refresh
	return nil
}

func (f *fakeRepo) StampLastLogin(_ context.Context, id string, at time.Time) error {
	a := f.live(id)
	if a == nil {
		return repo.ErrNotFound
	}
	a.LastLoginAt = &at
	return nil
}

func (f *fakeRepo) UpdateFields(_ context.Context, id string, fields map[string]any, at time.Time) error {
	a := f.live(id)
	if a == nil {
		return repo.ErrNotFound
	}
	if name, ok := fields["name"].(string); ok {
		a.Name = name
	}
	if active, ok := fields["is_active"].(bool); ok {
		a.IsActive = active
	}
	a.IsUpdated = true
	a.UpdatedAt = &at
	return nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	a := f.live(id)
	if a == nil {
		return repo.ErrNotFound
	}
	a.IsDeleted = true
	a.DeletedAt = &at
	a.IsActive = false
	a.AccessToken = nil
	a.RefreshToken = nil
	return nil
}

var _ repo.AccountRepository = (*fakeRepo)(nil)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	f := &fakeRepo{accounts: map[string]*entity.Account{}}
	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour)
	svc := application.NewService(f, jwt, helpers.NewPasswordHasher(bcrypt.MinCost), nil)
	h := NewAccountHandler(svc, nil, nil)

	r := gin.New()
	api := r.Group("/api")
	sanitize := middleware.SanitizeBody()
	api.POST("/register", sanitize, h.Register)
	api.POST("/login", sanitize, h.Login)
	auth := api.Group("/")
	auth.Use(middleware.Auth(svc))
	auth.GET("/profile", h.GetProfile)
	auth.PUT("/profile", sanitize, h.UpdateProfile)
	auth.POST("/logout", h.Logout)
	auth.DELETE("/account", h.DeleteAccount)
	return r
}

type envelope struct {
	Status    int             `json:"status"`
	RequestID string          `json:"request_id"`
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Error     json.RawMessage `json:"error"`
}

func doJSON(r *gin.Engine, method, path, body, token string) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

type authData struct {
	Account struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"account"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func register(t *testing.T, r *gin.Engine, email, name, password string) authData {
	t.Helper()
	body := `{"email":"` + email + `","name":"` + name + `","password":"` + password + `"}`
	w, env := doJSON(r, http.MethodPost, "/api/register", body, "")
	require.Equal(t, http.StatusCreated, w.Code, "register: %s", w.Body.String())
	var d authData
	require.NoError(t, json.Unmarshal(env.Data, &d))
	return d
}

func TestRegisterLoginProfileFlow(t *testing.T) {
	r := newTestRouter()

	d := register(t, r, "a@x.com", "Ann", "Passw0rd")
	require.NotEmpty(t, d.AccessToken)
	assert.Equal(t, "a@x.com", d.Account.Email)

	w, env := doJSON(r, http.MethodGet, "/api/profile", "", d.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = doJSON(r, http.MethodPut, "/api/profile", `{"name":"Ann Updated","email":"evil@x.com"}`, d.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	// email patch was stripped: login with the original email still works
	w, env = doJSON(r, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"Passw0rd"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var d2 authData
	require.NoError(t, json.Unmarshal(env.Data, &d2))
	assert.Equal(t, "Ann Updated", d2.Account.Name)
}

func TestRegisterValidationCollectsAllViolations(t *testing.T) {
	r := newTestRouter()

	w, env := doJSON(r, http.MethodPost, "/api/register", `{"email":"bad","password":"short"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	var details []string
	require.NoError(t, json.Unmarshal(env.Error, &details))
	// bad email (2 rules), missing name, weak password: all reported at once
	assert.GreaterOrEqual(t, len(details), 4)
}

func TestRegisterDuplicateConflict(t *testing.T) {
	r := newTestRouter()
	register(t, r, "a@x.com", "Ann", "Passw0rd")

	w, _ := doJSON(r, http.MethodPost, "/api/register", `{"email":"a@x.com","name":"Ann","password":"Passw0rd"}`, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestMissingBearerToken(t *testing.T) {
	r := newTestRouter()

	w, env := doJSON(r, http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "missing access token", env.Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newTestRouter()
	d := register(t, r, "a@x.com", "Ann", "Passw0rd")

	w, _ := doJSON(r, http.MethodPost, "/api/logout", "", d.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(r, http.MethodGet, "/api/profile", "", d.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteAccountEndToEnd(t *testing.T) {
	r := newTestRouter()
	d := register(t, r, "a@x.com", "Ann", "Passw0rd")

	w, env := doJSON(r, http.MethodDelete, "/api/account", "", d.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "deleted_at")

	// the last issued token authorizes nothing anymore
	w, _ = doJSON(r, http.MethodGet, "/api/profile", "", d.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// and login is gone too
	w, _ = doJSON(r, http.MethodPost, "/api/login", `{"email":"a@x.com","password":"Passw0rd"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOperatorPayloadNeverAuthenticates(t *testing.T) {
	r := newTestRouter()
	register(t, r, "a@x.com", "Ann", "Passw0rd")

	// operator-shaped email arrives sanitized and fails validation,
	// never acting as a match-anything filter
	w, _ := doJSON(r, http.MethodPost, "/api/login", `{"email":{"$gt":""},"password":{"$gt":""}}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
