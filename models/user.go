package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the local player record. Identity itself lives in the external
// profile service; rows here are created/updated by the profile sync worker
// on first login and carry all gameplay progression state.
type User struct {
	ID             string `gorm:"primaryKey" json:"id"`
	ExternalUserID string `gorm:"uniqueIndex;not null" json:"external_user_id"` // links to profile service
	Username       string `gorm:"uniqueIndex;not null" json:"username"`

	AvatarURL *string `json:"avatar_url,omitempty"`

	// Core progression (denormalized for performance)
	TotalExp             int64 `json:"total_exp" gorm:"default:0"`
	Level                int   `json:"level" gorm:"default:1"`
	TotalPlaytimeMinutes int64 `json:"total_playtime_minutes" gorm:"default:0"`

	// Guild membership — nil when the user is guildless
	GuildID *string `gorm:"index" json:"guild_id,omitempty"`

	LastActiveAt  *time.Time `json:"last_active_at,omitempty"`
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
