package db

import (
	"errors"
	"strings"

	"github.com/pysugar/social-nexus/internal/db/models"
	"gorm.io/gorm"
)

var (
	// ErrNotConnected is returned when a user has no credential stored for a provider.
	ErrNotConnected = errors.New("no account connected for provider")

	// ErrAccountClaimed is returned when an upsert would move a provider account
	// from one local user to another. Re-connecting an external account never
	// silently reassigns the credential.
	ErrAccountClaimed = errors.New("provider account already linked to another user")
)

// GetCredential returns the stored credential for (user, provider).
func GetCredential(gdb *gorm.DB, userID, provider string) (*models.SocialAccount, error) {
	var acc models.SocialAccount
	err := gdb.Where("user_id = ? AND provider = ?", userID, provider).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotConnected
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// UpsertCredential stores the credential produced by a completed OAuth handshake.
// The record is keyed by the provider-assigned account ID: re-authorizing the
// same external account updates tokens in place, while a user connecting a
// different external account replaces their existing (user, provider) record.
// Concurrent upserts for the same keys are resolved by retrying once after a
// unique-constraint conflict rather than pre-locking.
func UpsertCredential(gdb *gorm.DB, cred *models.SocialAccount) error {
	err := upsertOnce(gdb, cred)
	if err != nil && isUniqueViolation(err) {
		err = upsertOnce(gdb, cred)
	}
	return err
}

func upsertOnce(gdb *gorm.DB, cred *models.SocialAccount) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		var existing models.SocialAccount

		err := tx.Where("provider = ? AND provider_account_id = ?",
			cred.Provider, cred.ProviderAccountID).First(&existing).Error
		switch {
		case err == nil:
			if existing.UserID != cred.UserID {
				return ErrAccountClaimed
			}
			existing.AccessToken = cred.AccessToken
			existing.AccessSecret = cred.AccessSecret
			existing.ScreenName = cred.ScreenName
			return tx.Save(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			// fall through
		default:
			return err
		}

		err = tx.Where("user_id = ? AND provider = ?",
			cred.UserID, cred.Provider).First(&existing).Error
		switch {
		case err == nil:
			existing.ProviderAccountID = cred.ProviderAccountID
			existing.AccessToken = cred.AccessToken
			existing.AccessSecret = cred.AccessSecret
			existing.ScreenName = cred.ScreenName
			return tx.Save(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			cred.ID = 0
			return tx.Create(cred).Error
		default:
			return err
		}
	})
}

// DeleteCredential removes the credential for (user, provider). Deleting a
// provider with nothing stored reports ErrNotConnected instead of failing hard.
func DeleteCredential(gdb *gorm.DB, userID, provider string) error {
	res := gdb.Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.SocialAccount{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotConnected
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
