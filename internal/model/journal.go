package model

import "time"

// Journal is a scholarly journal record in the registry. Other catalog
// resources (classification codes, sections, contacts and so on) follow the
// same CRUD shape and are managed by external tooling.
type Journal struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(512);not null;index" json:"title"`
	ISSN        string    `gorm:"type:varchar(9);uniqueIndex" json:"issn"`
	EISSN       string    `gorm:"type:varchar(9)" json:"eissn"`
	Publisher   string    `gorm:"type:varchar(512)" json:"publisher"`
	Description string    `gorm:"type:text" json:"description"`
	Site        string    `gorm:"type:varchar(512)" json:"site"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
