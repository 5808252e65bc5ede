package model

// IPWhitelistEntry is a trusted CIDR range. Registrations and logins coming
// from an address inside any entry are granted the "user" role instead of "guest".
// IPNetwork is stored in canonical (masked) form so containment checks and the
// uniqueness constraint are well-defined.
type IPWhitelistEntry struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	IPNetwork        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"ip_network"`
	OrganizationName string `gorm:"type:varchar(255)" json:"organization_name"`
}

// TableName keeps the historical table name.
func (IPWhitelistEntry) TableName() string {
	return "ip_whitelist"
}
