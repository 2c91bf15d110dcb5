package services

import "errors"

// Not-found errors: the caller referenced a non-existent entity. Surfaced
// directly, never retried.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrGameNotFound    = errors.New("game not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrGuildNotFound   = errors.New("guild not found")
	ErrRequestNotFound = errors.New("friend request not found")
)

// State-precondition errors: the operation's precondition on current entity
// state was violated. User-actionable, not retried automatically.
var (
	ErrNoActiveSession  = errors.New("no active session")
	ErrAlreadyInGuild   = errors.New("user already belongs to a guild")
	ErrNotInGuild       = errors.New("user does not belong to a guild")
	ErrDuplicateRequest = errors.New("friend request already exists")
	ErrNotGuildOwner    = errors.New("operation requires guild owner or admin")
)
