package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend/internal/config"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/tokens"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory db")

	// A single connection keeps the in-memory database shared and serialized
	// when tests hit the services from multiple goroutines.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.IPWhitelistEntry{},
		&model.Journal{},
		&model.AuditLog{},
	)
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		JWTSecret:       []byte("test-jwt-secret"),
		AccessTokenTTL:  30 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		ResetTokenTTL:   time.Hour,
		FrontendBaseURL: "http://localhost:5173",
	}
}

type sentMail struct {
	Recipient string
	Subject   string
	Body      string
}

// fakeMailer records outgoing mail instead of dialing SMTP.
type fakeMailer struct {
	Sent     []sentMail
	FailNext bool
}

func (m *fakeMailer) Send(recipient, subject, body string) error {
	if m.FailNext {
		m.FailNext = false
		return errors.New("smtp dial failed")
	}
	m.Sent = append(m.Sent, sentMail{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

// newAuthFixture wires a full auth service over the in-memory DB with seeded
// default roles and a recording mailer.
type authFixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	roles     RoleService
	whitelist IPWhitelistService
	auth      AuthService
	mailer    *fakeMailer
	tokens    *tokens.Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := newTestDB(t)
	cfg := newTestConfig()

	users := repository.NewUserRepository(db)
	roles := NewRoleService(repository.NewRoleRepository(db))
	whitelist := NewIPWhitelistService(repository.NewIPWhitelistRepository(db))
	audit := NewAuditService(repository.NewAuditRepository(db))
	tokenSvc := tokens.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	txm := repository.NewTransactionManager(db)
	mailer := &fakeMailer{}

	require.NoError(t, roles.SeedDefaultRoles(context.Background()))

	return &authFixture{
		db:        db,
		users:     users,
		roles:     roles,
		whitelist: whitelist,
		auth:      NewAuthService(users, roles, whitelist, tokenSvc, mailer, audit, txm, cfg),
		mailer:    mailer,
		tokens:    tokenSvc,
	}
}
