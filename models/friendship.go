package models

import "time"

const (
	FriendshipStatusPending  = "pending"
	FriendshipStatusAccepted = "accepted"
)

// Friendship is a directed request edge between two users. Once accepted it
// is treated as an undirected friend edge; only one edge may exist per pair
// regardless of direction.
type Friendship struct {
	ID          string `gorm:"primaryKey" json:"id"`
	RequesterID string `gorm:"index:idx_friend_pair,unique;not null" json:"requester_id"`
	AddresseeID string `gorm:"index:idx_friend_pair,unique;not null" json:"addressee_id"`

	Status     string     `json:"status" gorm:"type:varchar(16);default:'pending'"`
	AcceptedAt *time.Time `json:"accepted_at,omitempty"`

	Timestamps
}
