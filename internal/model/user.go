package model

import (
	"time"
)

// User represents a registered account of the journal registry.
// Accounts are created inactive and must be confirmed by email before login.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"` // email-shaped login
	Password string `gorm:"type:varchar(255);not null" json:"-"`                    // bcrypt hash, omit from JSON
	IP       string `gorm:"type:varchar(255)" json:"ip"`                            // address seen at registration / last login
	RoleID   uint   `gorm:"not null;index" json:"role_id"`
	Role     Role   `gorm:"foreignKey:RoleID" json:"role"`

	IsActive bool `gorm:"default:false" json:"is_active"`

	// Single-use tokens, cleared immediately on consumption.
	ConfirmationToken         *string    `gorm:"type:varchar(255);index" json:"-"`
	ResetPasswordToken        *string    `gorm:"type:varchar(255);index" json:"-"`
	ResetPasswordTokenExpires *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
