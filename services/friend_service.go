package services

import (
	"errors"
	"fmt"
	"time"

	"retro-arcade-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FriendService manages friendship edges. Accepting a request awards the
// friend bonus to both sides through the consolidated award path, so guild
// aggregates stay in step.
type FriendService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewFriendService(db *gorm.DB) *FriendService {
	return &FriendService{DB: db, now: time.Now}
}

// SendRequest creates a pending edge from the requester to the addressee
// (looked up by username). Duplicate edges in either direction are rejected.
func (s *FriendService) SendRequest(requesterExternalID, addresseeUsername string) (*models.Friendship, error) {
	var edge *models.Friendship
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		requester, err := findUserTx(tx, requesterExternalID)
		if err != nil {
			return err
		}

		var addressee models.User
		if err := tx.Where("username = ?", addresseeUsername).First(&addressee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrUserNotFound, addresseeUsername)
			}
			return err
		}
		if addressee.ID == requester.ID {
			return fmt.Errorf("%w: cannot befriend yourself", ErrDuplicateRequest)
		}

		var count int64
		if err := tx.Model(&models.Friendship{}).
			Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
				requester.ID, addressee.ID, addressee.ID, requester.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s ↔ %s", ErrDuplicateRequest, requester.Username, addressee.Username)
		}

		edge = &models.Friendship{
			ID:          uuid.NewString(),
			RequesterID: requester.ID,
			AddresseeID: addressee.ID,
			Status:      models.FriendshipStatusPending,
		}
		return tx.Create(edge).Error
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// AcceptRequest marks the edge accepted and awards the friend bonus to both
// users in the same transaction.
func (s *FriendService) AcceptRequest(addresseeExternalID, requestID string) (*models.Friendship, error) {
	now := s.now()

	var edge models.Friendship
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		addressee, err := findUserTx(tx, addresseeExternalID)
		if err != nil {
			return err
		}

		if err := tx.Where("id = ? AND addressee_id = ? AND status = ?",
			requestID, addressee.ID, models.FriendshipStatusPending).
			First(&edge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
			}
			return err
		}

		var requester models.User
		if err := tx.First(&requester, "id = ?", edge.RequesterID).Error; err != nil {
			return err
		}

		edge.Status = models.FriendshipStatusAccepted
		edge.AcceptedAt = &now
		if err := tx.Save(&edge).Error; err != nil {
			return err
		}

		if _, err := awardExpTx(tx, now, addressee, FriendBonusExp, "friend_accept"); err != nil {
			return err
		}
		if _, err := awardExpTx(tx, now, &requester, FriendBonusExp, "friend_accept"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &edge, nil
}

// RemoveFriend deletes the edge between the user and the named friend,
// accepted or pending, regardless of direction.
func (s *FriendService) RemoveFriend(externalUserID, friendUsername string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}

		var friend models.User
		if err := tx.Where("username = ?", friendUsername).First(&friend).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrUserNotFound, friendUsername)
			}
			return err
		}

		return tx.Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			user.ID, friend.ID, friend.ID, user.ID).
			Delete(&models.Friendship{}).Error
	})
}

// ListFriends returns the user's accepted friends.
func (s *FriendService) ListFriends(externalUserID string) ([]models.User, error) {
	user, err := findUserTx(s.DB, externalUserID)
	if err != nil {
		return nil, err
	}

	var friends []models.User
	err = s.DB.Raw(`
		SELECT u.* FROM users u
		INNER JOIN friendships f
			ON (f.requester_id = u.id AND f.addressee_id = ?)
			OR (f.addressee_id = u.id AND f.requester_id = ?)
		WHERE f.status = ? AND f.deleted_at IS NULL AND u.deleted_at IS NULL
		ORDER BY u.last_active_at DESC
	`, user.ID, user.ID, models.FriendshipStatusAccepted).Scan(&friends).Error
	return friends, err
}

// PendingRequests returns requests waiting on the user.
func (s *FriendService) PendingRequests(externalUserID string) ([]models.Friendship, error) {
	user, err := findUserTx(s.DB, externalUserID)
	if err != nil {
		return nil, err
	}

	var pending []models.Friendship
	err = s.DB.Where("addressee_id = ? AND status = ?", user.ID, models.FriendshipStatusPending).
		Order("created_at DESC").
		Find(&pending).Error
	return pending, err
}
