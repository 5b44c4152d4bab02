package models

import "time"

// User owns at most one SocialAccount per provider. Deleting a user removes
// their credential records with it.
type User struct {
	ID           string `gorm:"primaryKey"` // UUID
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Accounts []SocialAccount `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
