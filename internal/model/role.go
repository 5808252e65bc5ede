package model

// Well-known role names the auth workflow depends on. All three must exist
// in the roles table; startup seeding guarantees the chain guest <- user <- admin.
const (
	RoleGuest = "guest"
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Role is a node in the role hierarchy. A role inherits the permissions of
// every ancestor reachable through ParentID, so "admin" with parent "user"
// satisfies any check that requires "user".
type Role struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ParentID *uint  `gorm:"index" json:"parent_id"`
	Parent   *Role  `gorm:"foreignKey:ParentID" json:"-"`
}
