package models

import "time"

const (
	GuildRoleOwner  = "owner"
	GuildRoleAdmin  = "admin"
	GuildRoleMember = "member"
)

// Guild aggregates users. TotalExp is a running counter of member XP
// contributions maintained incrementally by the award path and membership
// operations — it is never re-summed from members on read. The reconciler
// job repairs drift against the true member sum.
type Guild struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"uniqueIndex" json:"slug"`
	Description string `json:"description"`

	OwnerID string `gorm:"not null" json:"owner_id"` // users.id

	TotalExp    int64 `json:"total_exp" gorm:"default:0"`
	Level       int   `json:"level" gorm:"default:1"`
	MemberCount int   `json:"member_count" gorm:"default:0"`

	Timestamps
}

// GuildMember links a user to a guild with a role. A user belongs to at
// most one guild (enforced by the unique index on UserID).
type GuildMember struct {
	ID      string `gorm:"primaryKey" json:"id"`
	GuildID string `gorm:"index;not null" json:"guild_id"`
	UserID  string `gorm:"uniqueIndex;not null" json:"user_id"`

	Role string `json:"role" gorm:"type:varchar(16);default:'member'"`

	JoinedAt time.Time `json:"joined_at" gorm:"autoCreateTime"`
}
