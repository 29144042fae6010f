package models

// User is the authentication identity behind a profile.
type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	IsActive     bool   `json:"is_active"`
	LastLoginAt  int64  `json:"last_login_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}
