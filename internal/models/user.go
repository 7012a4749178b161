package models

import "time"

// User is a person allowed to log in. Only staff users may mutate sales.
type User struct {
	Base
	Username    string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Password    string     `gorm:"not null" json:"-"`
	IsStaff     bool       `gorm:"not null;default:false" json:"is_staff"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
