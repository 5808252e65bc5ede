package model

import (
	"time"
)

const (
	ActionRegisterUser    = "REGISTER_USER"
	ActionConfirmAccount  = "CONFIRM_ACCOUNT"
	ActionRoleUpgrade     = "ROLE_UPGRADE" // adaptive guest -> user elevation at login
	ActionChangeUserRole  = "CHANGE_USER_ROLE"
	ActionResetPassword   = "RESET_PASSWORD"
	ActionAddWhitelist    = "ADD_IP_WHITELIST"
	ActionUpdateWhitelist = "UPDATE_IP_WHITELIST"
	ActionDeleteWhitelist = "DELETE_IP_WHITELIST"
)

// AuditLog tracks Who, What, and When for security-sensitive changes:
// account lifecycle transitions, role mutations and whitelist edits.
type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"` // nil when caused by an unauthenticated flow
	User       *User     `gorm:"foreignKey:UserID" json:"user"`
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:text" json:"details"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
