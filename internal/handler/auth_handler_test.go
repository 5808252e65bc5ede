package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backend/internal/config"
	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/pkg/tokens"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// stubMailer records outgoing mail so tests can pull tokens out of the links.
type stubMailer struct {
	sent []string
}

func (m *stubMailer) Send(recipient, subject, body string) error {
	m.sent = append(m.sent, body)
	return nil
}

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	users  repository.UserRepository
	roles  service.RoleService
	tokens *tokens.Service
	mailer *stubMailer
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.IPWhitelistEntry{},
		&model.Journal{},
		&model.AuditLog{},
	))

	cfg := &config.Config{
		JWTSecret:       []byte("test-jwt-secret"),
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   time.Hour,
		FrontendBaseURL: "http://localhost:5173",
	}

	users := repository.NewUserRepository(db)
	roles := service.NewRoleService(repository.NewRoleRepository(db))
	whitelist := service.NewIPWhitelistService(repository.NewIPWhitelistRepository(db))
	audit := service.NewAuditService(repository.NewAuditRepository(db))
	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	mailer := &stubMailer{}

	require.NoError(t, roles.SeedDefaultRoles(context.Background()))

	txm := repository.NewTransactionManager(db)
	authSvc := service.NewAuthService(users, roles, whitelist, tokenSvc, mailer, audit, txm, cfg)
	userSvc := service.NewUserService(users, roles)

	middleware.Init(tokenSvc, users, roles)

	router := gin.New()
	api := router.Group("")
	NewAuthHandler(authSvc).RegisterRoutes(api)
	NewUserHandler(userSvc).RegisterRoutes(api)
	NewIPWhitelistHandler(whitelist, audit).RegisterRoutes(api)

	return &apiFixture{router: router, db: db, users: users, roles: roles, tokens: tokenSvc, mailer: mailer}
}

// do runs a request against the test router. The remote address defaults to an
// arbitrary public IP so whitelist checks see a non-trusted client.
func (f *apiFixture) do(t *testing.T, method, target, bearer string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, target, body)
	req.RemoteAddr = "203.0.113.7:51000"
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response wrapper with the data left raw for re-decoding.
type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// seedAdmin inserts an active admin account directly and returns its access token.
func (f *apiFixture) seedAdmin(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	admin, err := f.roles.GetRoleByName(ctx, model.RoleAdmin)
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := model.User{Username: "admin@example.com", Password: string(hash), RoleID: admin.ID, IsActive: true}
	require.NoError(t, f.users.Create(ctx, &user))

	token, err := f.tokens.NewAccessToken(user.Username)
	require.NoError(t, err)
	return token
}

func (f *apiFixture) confirmationToken(t *testing.T, username string) string {
	t.Helper()
	user, err := f.users.GetByUsername(context.Background(), username)
	require.NoError(t, err)
	require.NotNil(t, user.ConfirmationToken)
	return *user.ConfirmationToken
}

func TestAuthFlow_RegisterConfirmLogin(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", "", gin.H{"username": "reader@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "success", decodeEnvelope(t, rec).Status)
	require.Len(t, f.mailer.sent, 1)

	// Login before confirmation is rejected.
	rec = f.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "reader@example.com", "password": "secret"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := f.confirmationToken(t, "reader@example.com")
	rec = f.do(t, http.MethodPost, "/auth/confirm?token="+token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A spent confirmation token reads as unknown.
	rec = f.do(t, http.MethodPost, "/auth/confirm?token="+token, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "reader@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokenRes service.TokenResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &tokenRes))
	assert.Equal(t, "bearer", tokenRes.TokenType)

	claims, err := f.tokens.Decode(tokenRes.AccessToken, tokens.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", claims.Subject)

	// The access token opens /me for the fresh (guest) account.
	rec = f.do(t, http.MethodGet, "/me", tokenRes.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Refresh with the refresh token yields a working pair.
	rec = f.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": tokenRes.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Refresh with garbage is an authentication failure.
	rec = f.do(t, http.MethodPost, "/auth/refresh", "", gin.H{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthFlow_ValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/auth/register", "", gin.H{"username": "not-an-email", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/confirm", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/reset-password?token=unknown&new_password=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/request-password-reset?email=ghost@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminGate(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := f.seedAdmin(t)

	// Register and confirm a plain account.
	rec := f.do(t, http.MethodPost, "/auth/register", "", gin.H{"username": "reader@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/auth/confirm?token="+f.confirmationToken(t, "reader@example.com"), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/auth/login", "", gin.H{"username": "reader@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var readerTokens service.TokenResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &readerTokens))

	// Admin endpoints reject missing, malformed and underprivileged credentials.
	rec = f.do(t, http.MethodGet, "/whitelist/ip-whitelist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/whitelist/ip-whitelist", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/whitelist/ip-whitelist", readerTokens.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/whitelist/ip-whitelist", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Admin manages the whitelist through the API.
	rec = f.do(t, http.MethodPost, "/whitelist/ip-whitelist", adminToken, gin.H{"ip_network": "192.168.1.17/24", "organization_name": "Campus"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry model.IPWhitelistEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &entry))
	assert.Equal(t, "192.168.1.0/24", entry.IPNetwork)

	rec = f.do(t, http.MethodPost, "/whitelist/ip-whitelist", adminToken, gin.H{"ip_network": "192.168.1.0/24", "organization_name": "Campus"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/whitelist/ip-whitelist/%d", entry.ID), adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Admin changes the reader's role; the reader still cannot self-escalate.
	reader, err := f.users.GetByUsername(context.Background(), "reader@example.com")
	require.NoError(t, err)
	adminRole, err := f.roles.GetRoleByName(context.Background(), model.RoleAdmin)
	require.NoError(t, err)

	rec = f.do(t, http.MethodPut, "/auth/change-role", readerTokens.AccessToken, gin.H{"user_id": reader.ID, "new_role": adminRole.ID})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodPut, "/auth/change-role", adminToken, gin.H{"user_id": reader.ID, "new_role": adminRole.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := f.users.GetByUsername(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, adminRole.ID, updated.RoleID)

	// Admin listing users now works for the promoted account too.
	rec = f.do(t, http.MethodGet, "/users", readerTokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestWhitelistMutations_AreAudited(t *testing.T) {
	f := newAPIFixture(t)
	adminToken := f.seedAdmin(t)

	rec := f.do(t, http.MethodPost, "/whitelist/ip-whitelist", adminToken, gin.H{"ip_network": "10.0.0.0/8", "organization_name": "Consortium"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var entry model.IPWhitelistEntry
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &entry))

	rec = f.do(t, http.MethodPut, fmt.Sprintf("/whitelist/ip-whitelist/%d", entry.ID), adminToken, gin.H{"organization_name": "Consortium HQ"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodDelete, fmt.Sprintf("/whitelist/ip-whitelist/%d", entry.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	admin, err := f.users.GetByUsername(context.Background(), "admin@example.com")
	require.NoError(t, err)

	// Each mutation leaves one audit row attributed to the acting admin and
	// carrying the affected network.
	var logs []model.AuditLog
	require.NoError(t, f.db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 3)

	wantActions := []string{model.ActionAddWhitelist, model.ActionUpdateWhitelist, model.ActionDeleteWhitelist}
	for i, logged := range logs {
		assert.Equal(t, wantActions[i], logged.Action)
		require.NotNil(t, logged.UserID)
		assert.Equal(t, admin.ID, *logged.UserID)
		assert.Equal(t, "10.0.0.0/8", logged.EntityName)
	}
}
