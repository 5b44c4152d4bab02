package models

import "time"

// Provider identifiers for SocialAccount records.
const (
	ProviderLinkedIn = "linkedin"
	ProviderTwitter  = "twitter"
)

// SocialAccount stores the OAuth credentials a user granted for one provider.
// Two invariants are enforced at the schema level: a user holds at most one
// record per provider, and an external account can only be claimed by one
// local user per provider.
type SocialAccount struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            string `gorm:"uniqueIndex:idx_user_provider;not null"`
	Provider          string `gorm:"uniqueIndex:idx_user_provider;uniqueIndex:idx_provider_account;not null"`
	ProviderAccountID string `gorm:"uniqueIndex:idx_provider_account;not null"`
	AccessToken       string `gorm:"not null"`
	AccessSecret      string // OAuth1 providers only
	ScreenName        string // display handle where the provider reports one
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
