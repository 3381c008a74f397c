package user

import "time"

// Roles known to the marketplace. Chat does not branch on them but the seed
// tool and the summaries expose them.
const (
	RoleCustomer = "CUSTOMER"
	RoleProvider = "PROVIDER"
	RoleAdmin    = "ADMIN"
)

// User represents the users table. Accounts are owned by the auth service;
// chat only reads them.
type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Name         string `gorm:"size:120;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Role         string `gorm:"size:20;not null;default:CUSTOMER"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}
