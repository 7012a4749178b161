package models

// AuditLog records who changed sales and stock, from where, and how.
type AuditLog struct {
	Base
	UserID       string `gorm:"type:uuid;index" json:"user_id"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   string `gorm:"type:uuid" json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	RequestID    string `gorm:"size:64;index" json:"request_id,omitempty"`
	Changes      string `json:"changes,omitempty"`
}
