package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenBlacklist holds the HMAC of a logged-out access token. Rows are kept
// until the token would have expired and then purged for good.
type TokenBlacklist struct {
	TokenBlacklistID        uuid.UUID `json:"token_blacklist_id" gorm:"column:token_blacklist_id;type:uuid;primaryKey"`
	TokenBlacklistHash      string    `json:"-" gorm:"column:token_blacklist_hash;type:char(64);not null;uniqueIndex"`
	TokenBlacklistExpiresAt time.Time `json:"token_blacklist_expires_at" gorm:"column:token_blacklist_expires_at;type:timestamptz;not null;index"`
	TokenBlacklistCreatedAt time.Time `json:"token_blacklist_created_at" gorm:"column:token_blacklist_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }

func (m *TokenBlacklist) BeforeCreate(tx *gorm.DB) error {
	if m.TokenBlacklistID == uuid.Nil {
		m.TokenBlacklistID = uuid.New()
	}
	return nil
}
