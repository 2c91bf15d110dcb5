package models

import "time"

const (
	SessionStatusOpen   = "open"
	SessionStatusClosed = "closed"
)

// PlaySession records one continuous play interval for one user on one game.
// Award fields stay zero while the session is open and are frozen on close;
// a closed session is never mutated again.
//
// Invariant: at most one open session per user. The session service enforces
// this by force-closing any orphaned open session on the next start.
type PlaySession struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index:idx_sessions_user_status;not null" json:"user_id"`
	GameID string `gorm:"index;not null" json:"game_id"`

	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// Derived on close
	DurationMinutes int64 `json:"duration_minutes" gorm:"default:0"`
	ExpEarned       int64 `json:"exp_earned" gorm:"default:0"`

	Status string `json:"status" gorm:"type:varchar(16);default:'open';index:idx_sessions_user_status"`

	// Whether the player finished the game (completion bonus applied)
	CompletedGame bool `json:"completed_game" gorm:"default:false"`

	Timestamps
}
