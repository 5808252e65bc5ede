package service

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strconv"
	"time"

	"backend/internal/config"
	"backend/internal/mail"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/tokens"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// --- DTOs ---

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangeUserRoleRequest struct {
	UserID  uint `json:"user_id" binding:"required"`
	NewRole uint `json:"new_role" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// --- Interface ---

// AuthService orchestrates registration, login with adaptive trust elevation,
// token refresh and the confirmation / password-reset token lifecycles.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, clientIP string) (*MessageResponse, error)
	Login(ctx context.Context, req LoginRequest, clientIP string) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	ConfirmAccount(ctx context.Context, token string) (*MessageResponse, error)
	RequestPasswordReset(ctx context.Context, email string) (*MessageResponse, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error)
	ResendConfirmation(ctx context.Context, email string) (*MessageResponse, error)
	ChangeUserRole(ctx context.Context, userID, newRoleID uint) (*MessageResponse, error)
}

type authService struct {
	users     repository.UserRepository
	roles     RoleService
	whitelist IPWhitelistService
	tokens    *tokens.Service
	mailer    mail.Mailer
	audit     AuditService
	txm       repository.TransactionManager
	cfg       *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	roles RoleService,
	whitelist IPWhitelistService,
	tokenSvc *tokens.Service,
	mailer mail.Mailer,
	audit AuditService,
	txm repository.TransactionManager,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:     users,
		roles:     roles,
		whitelist: whitelist,
		tokens:    tokenSvc,
		mailer:    mailer,
		audit:     audit,
		txm:       txm,
		cfg:       cfg,
	}
}

// Register creates an inactive account. The default role depends on whether
// the client address is whitelisted: trusted networks get "user", everyone
// else "guest". The account stays unusable until the emailed confirmation
// token is consumed.
func (s *authService) Register(ctx context.Context, req RegisterRequest, clientIP string) (*MessageResponse, error) {
	if !emailRegex.MatchString(req.Username) {
		return nil, ErrInvalidEmail
	}

	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrDuplicateUser
	}

	allowed, err := s.whitelist.IsWhitelisted(ctx, clientIP)
	if err != nil {
		return nil, err
	}
	roleName := model.RoleGuest
	if allowed {
		roleName = model.RoleUser
	}

	role, err := s.roles.GetRoleByName(ctx, roleName)
	if err != nil {
		log.Printf("Default role %q not found: %v", roleName, err)
		return nil, ErrConfiguration
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	confirmationToken := uuid.NewString()
	user := model.User{
		Username:          req.Username,
		Password:          string(hashed),
		IP:                clientIP,
		RoleID:            role.ID,
		IsActive:          false,
		ConfirmationToken: &confirmationToken,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	log.Printf("New user registered: %s (IP: %s, Role: %s)", req.Username, clientIP, role.Name)
	s.audit.Record(ctx, &user.ID, model.ActionRegisterUser, strconv.FormatUint(uint64(user.ID), 10), user.Username, "role="+role.Name)

	// Mail failure is surfaced: the caller must know the confirmation link
	// never went out. The inactive row stays and resend-confirmation recovers it.
	subject, body := mail.ConfirmationMessage(s.cfg.FrontendBaseURL, confirmationToken)
	if err := s.mailer.Send(req.Username, subject, body); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: "User registered successfully. Check your email to confirm the account"}, nil
}

// Login verifies credentials and issues a token pair. When the client address
// is whitelisted and the account still carries the "guest" role, the role is
// upgraded to "user" before tokens are issued. The upgrade writes a single
// column to an idempotent target value, so concurrent logins converge.
func (s *authService) Login(ctx context.Context, req LoginRequest, clientIP string) (*TokenResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		// Same error as a bad password, to avoid username enumeration.
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountNotActivated
	}

	allowed, err := s.whitelist.IsWhitelisted(ctx, clientIP)
	if err != nil {
		return nil, err
	}

	if allowed {
		currentRole, err := s.roles.GetRoleByName(ctx, model.RoleGuest)
		if err == nil && user.RoleID == currentRole.ID {
			userRole, err := s.roles.GetRoleByName(ctx, model.RoleUser)
			if err != nil {
				return nil, ErrConfiguration
			}
			if err := s.users.UpdateRole(ctx, user.ID, userRole.ID); err != nil {
				return nil, err
			}
			log.Printf("User %q role upgraded from 'guest' to 'user' based on IP %s", user.Username, clientIP)
			s.audit.Record(ctx, &user.ID, model.ActionRoleUpgrade, strconv.FormatUint(uint64(user.ID), 10), user.Username, "ip="+clientIP)
		}
	}

	return s.issueTokenPair(user.Username)
}

// Refresh validates a refresh token and mints a fresh pair. Refresh tokens
// are stateless and not rotated: a token stays usable until natural expiry.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.tokens.Decode(refreshToken, tokens.TypeRefresh)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.issueTokenPair(user.Username)
}

func (s *authService) ConfirmAccount(ctx context.Context, token string) (*MessageResponse, error) {
	user, err := s.users.GetByConfirmationToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	// The activation write and its audit entry share one transaction.
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		user.IsActive = true
		user.ConfirmationToken = nil
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		s.audit.Record(txCtx, &user.ID, model.ActionConfirmAccount, strconv.FormatUint(uint64(user.ID), 10), user.Username, "")
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &MessageResponse{Message: "Account confirmed successfully"}, nil
}

func (s *authService) RequestPasswordReset(ctx context.Context, email string) (*MessageResponse, error) {
	user, err := s.users.GetByUsername(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	resetToken := uuid.NewString()
	expires := time.Now().UTC().Add(s.cfg.ResetTokenTTL)
	user.ResetPasswordToken = &resetToken
	user.ResetPasswordTokenExpires = &expires
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	subject, body := mail.ResetPasswordMessage(s.cfg.FrontendBaseURL, resetToken)
	if err := s.mailer.Send(email, subject, body); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: "Password reset instructions sent to your email"}, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error) {
	user, err := s.users.GetByResetPasswordToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidOrExpiredToken
	}

	// Stored expiry may be naive; compare in UTC.
	if user.ResetPasswordTokenExpires == nil || user.ResetPasswordTokenExpires.UTC().Before(time.Now().UTC()) {
		return nil, ErrInvalidOrExpiredToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user.Password = string(hashed)
	user.ResetPasswordToken = nil
	user.ResetPasswordTokenExpires = nil
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &user.ID, model.ActionResetPassword, strconv.FormatUint(uint64(user.ID), 10), user.Username, "")
	return &MessageResponse{Message: "Password changed successfully"}, nil
}

func (s *authService) ResendConfirmation(ctx context.Context, email string) (*MessageResponse, error) {
	user, err := s.users.GetByUsername(ctx, email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if user.IsActive {
		return nil, ErrAlreadyActive
	}

	confirmationToken := uuid.NewString()
	user.ConfirmationToken = &confirmationToken
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	subject, body := mail.ConfirmationMessage(s.cfg.FrontendBaseURL, confirmationToken)
	if err := s.mailer.Send(email, subject, body); err != nil {
		return nil, err
	}

	return &MessageResponse{Message: "Confirmation email sent"}, nil
}

func (s *authService) ChangeUserRole(ctx context.Context, userID, newRoleID uint) (*MessageResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	// Verify-then-update runs in one transaction so a role deleted in between
	// cannot be assigned.
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.roles.GetRoleByID(txCtx, newRoleID); err != nil {
			return err
		}
		if err := s.users.UpdateRole(txCtx, user.ID, newRoleID); err != nil {
			return err
		}
		s.audit.Record(txCtx, &user.ID, model.ActionChangeUserRole, strconv.FormatUint(uint64(user.ID), 10), user.Username, "new_role_id="+strconv.FormatUint(uint64(newRoleID), 10))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Role for user %d changed to %d", userID, newRoleID)
	return &MessageResponse{Message: "Role updated successfully"}, nil
}

func (s *authService) issueTokenPair(username string) (*TokenResponse, error) {
	accessToken, err := s.tokens.NewAccessToken(username)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.NewRefreshToken(username)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
	}, nil
}
