package models

// ChatMessage is plain message persistence for guild and lobby chat.
// Delivery/fan-out is handled client-side by polling recent history.
type ChatMessage struct {
	ID string `gorm:"primaryKey" json:"id"`

	// nil = global lobby, otherwise guild-scoped
	GuildID *string `gorm:"index" json:"guild_id,omitempty"`

	SenderID   string `gorm:"index;not null" json:"sender_id"`
	SenderName string `json:"sender_name"`
	Body       string `gorm:"type:text;not null" json:"body"`

	Timestamps
}
