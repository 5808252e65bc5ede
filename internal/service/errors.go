package service

import "errors"

// Sentinel errors returned by the service layer. Handlers translate these to
// HTTP statuses with errors.Is; messages are safe to show to callers.
var (
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrAccountNotActivated   = errors.New("account is not activated")
	ErrDuplicateUser         = errors.New("username already exists")
	ErrInvalidEmail          = errors.New("invalid email format")
	ErrUserNotFound          = errors.New("user not found")
	ErrRoleNotFound          = errors.New("role not found")
	ErrRoleExists            = errors.New("role already exists")
	ErrRoleInUse             = errors.New("role is referenced by existing users")
	ErrRoleCycle             = errors.New("role parent chain would form a cycle")
	ErrAlreadyActive         = errors.New("account is already activated")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrInvalidNetwork        = errors.New("invalid IP network format")
	ErrDuplicateNetwork      = errors.New("IP network already exists")
	ErrWhitelistNotFound     = errors.New("whitelist entry not found")
	ErrJournalNotFound       = errors.New("journal not found")

	// ErrConfiguration marks a deployment misconfiguration (a well-known role
	// missing from the roles table). It must surface as a 5xx, never a 4xx.
	ErrConfiguration = errors.New("required default role is not configured")
)
