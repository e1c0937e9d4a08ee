package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"join-finance-api/internal/adapters/http/handlers"
	"join-finance-api/internal/adapters/http/middleware"
	"join-finance-api/internal/adapters/persistence/models"
	"join-finance-api/internal/config"
	"join-finance-api/internal/core/services"
	"join-finance-api/internal/pkg/jwt"
	"join-finance-api/internal/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory Repository Stubs ────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*models.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uint(len(r.users) + 1)
	r.users[u.Username] = u
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetActiveWithProfileByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok || !u.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUserRepo) GetActiveWithProfileByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id && u.IsActive {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

type stubDisbRepo struct {
	mu            sync.Mutex
	nextID        uint
	disbursements map[uint]*models.Disbursement
	records       []*models.DisbursementRecord
}

func newStubDisbRepo() *stubDisbRepo {
	return &stubDisbRepo{disbursements: make(map[uint]*models.Disbursement)}
}

func (r *stubDisbRepo) Create(_ context.Context, d *models.Disbursement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	d.ID = r.nextID
	copied := *d
	r.disbursements[d.ID] = &copied
	return nil
}

func (r *stubDisbRepo) CreateRecord(_ context.Context, rec *models.DisbursementRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec.ID = uint(len(r.records) + 1)
	copied := *rec
	r.records = append(r.records, &copied)
	return nil
}

func (r *stubDisbRepo) UpdateStatus(_ context.Context, id uint, status string, processed, errored int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disbursements[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Status = status
	d.ProcessedRecords = processed
	d.ErrorRecords = errored
	return nil
}

func (r *stubDisbRepo) GetByBatchNumber(_ context.Context, batchNumber string) (*models.Disbursement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.disbursements {
		if d.BatchNumber == batchNumber {
			copied := *d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubDisbRepo) ListRecordsByBatch(_ context.Context, batchNumber string) ([]*models.DisbursementRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DisbursementRecord
	for _, rec := range r.records {
		if rec.BatchNumber == batchNumber {
			copied := *rec
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *stubDisbRepo) List(_ context.Context, uploadedBy uint, offset, limit int) ([]*models.Disbursement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Disbursement
	for id := r.nextID; id >= 1; id-- {
		d, ok := r.disbursements[id]
		if !ok {
			continue
		}
		if uploadedBy != 0 && d.UploadedBy != uploadedBy {
			continue
		}
		copied := *d
		out = append(out, &copied)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, total, nil
}

// ── Test App Wiring ───────────────────────────────────────────────────────────

const testSecret = "test_jwt_secret_32_chars_minimum!"

type testEnv struct {
	app      *fiber.App
	cfg      *config.Config
	userRepo *stubUserRepo
	disbRepo *stubDisbRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:       testSecret,
			ExpiresHours: 24,
		},
		Upload: config.UploadConfig{
			Dir:       t.TempDir(),
			MaxSizeMB: 10,
		},
	}

	userRepo := newStubUserRepo()
	disbRepo := newStubDisbRepo()

	authService := services.NewAuthService(userRepo, cfg)
	disbService := services.NewDisbursementService(disbRepo)

	authHandler := handlers.NewAuthHandler(authService)
	disbHandler := handlers.NewDisbursementHandler(disbService, cfg)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Get("/profile", middleware.AuthMiddleware(cfg), middleware.RequireActiveUser(userRepo), authHandler.GetProfile)
	auth.Get("/authme", middleware.AuthMiddleware(cfg), authHandler.AuthMe)
	auth.Post("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)

	disbursement := api.Group("/disbursement")
	disbursement.Use(middleware.AuthMiddleware(cfg), middleware.RequireActiveUser(userRepo))
	disbursement.Post("/upload", disbHandler.Upload)
	disbursement.Get("/", disbHandler.List)
	disbursement.Get("/details/:batchNumber", disbHandler.Details)

	return &testEnv{app: app, cfg: cfg, userRepo: userRepo, disbRepo: disbRepo}
}

func (e *testEnv) seedUser(t *testing.T, username, plain, role string, active bool) *models.User {
	t.Helper()

	hash, err := password.Hash(plain)
	require.NoError(t, err)

	u := &models.User{
		Username: username,
		Password: hash,
		Email:    username + "@joinfinance.com",
		FullName: "Test " + username,
		Role:     role,
		IsActive: active,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	return u
}

func (e *testEnv) tokenFor(t *testing.T, u *models.User) string {
	t.Helper()

	token, err := jwt.GenerateToken(u.ID, u.Username, u.Role, testSecret, 24)
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (*http.Response, *envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, &env
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLoginEndpointSuccess(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "budi", "rahasia123", models.RoleUser, true)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "budi",
		"password": "rahasia123",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)

	var data struct {
		Token   string                 `json:"token"`
		Profile models.ProfileResponse `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	require.NotEmpty(t, data.Token)
	assert.Equal(t, "budi", data.Profile.UserID)

	claims, err := jwt.ValidateToken(data.Token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginEndpointWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "budi", "rahasia123", models.RoleUser, true)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "budi",
		"password": "salah",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid username or password", body.Message)
}

func TestLoginEndpointUnknownUserSameMessage(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "ghost",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", body.Message)
}

func TestLoginEndpointMissingFields(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := doJSON(t, env.app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": "budi",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access token is required", body.Message)
}

func TestProfileRejectsDeactivatedAccount(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "budi", "rahasia123", models.RoleUser, true)
	token := env.tokenFor(t, user)

	// Account disabled after the token was issued
	user.IsActive = false

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "User not found or inactive", body.Message)
}

func TestProfileReturnsDefaults(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "budi", "rahasia123", models.RoleUser, true)
	token := env.tokenFor(t, user)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Profile models.ProfileResponse `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "24.00.0125", data.Profile.NIP)
	assert.Equal(t, "DIVISI INFORMATION TECHNOLOGY", data.Profile.NamaCabang)
}

func TestAuthMeUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	// Token for a user id that never existed
	token, err := jwt.GenerateToken(404, "ghost", models.RoleUser, testSecret, 24)
	require.NoError(t, err)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/auth/authme", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found or inactive", body.Message)
}

func TestAuthMeExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "budi", "rahasia123", models.RoleUser, true)

	token, err := jwt.GenerateToken(user.ID, user.Username, user.Role, testSecret, -1)
	require.NoError(t, err)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/auth/authme", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has expired", body.Message)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "budi", "rahasia123", models.RoleUser, true)
	token := env.tokenFor(t, user)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, body.Success)
}
