package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"retro-arcade-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionService owns the play-session lifecycle: start, heartbeat, end, and
// forced close of orphaned sessions. Each operation re-checks the open-session
// index at the start of the call — nothing is cached in memory, since calls
// are independent and potentially concurrent across instances.
type SessionService struct {
	DB          *gorm.DB
	Leaderboard *LeaderboardService // optional; nil disables ranking updates

	now func() time.Time
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{DB: db, now: time.Now}
}

// HeartbeatResult is advisory only — nothing on the session record changes.
type HeartbeatResult struct {
	Success                bool  `json:"success"`
	CurrentDurationMinutes int64 `json:"current_duration_minutes"`
	EstimatedExp           int64 `json:"estimated_exp"`
}

// EndSessionResult reports the frozen award after a session closes.
type EndSessionResult struct {
	SessionID            string `json:"session_id"`
	DurationMinutes      int64  `json:"duration_minutes"`
	ExpAwarded           int64  `json:"exp_awarded"`
	TotalExp             int64  `json:"total_exp"`
	TotalPlaytimeMinutes int64  `json:"total_playtime_minutes"`
	Level                int    `json:"level"`
	LeveledUp            bool   `json:"leveled_up"`
}

// StartSession opens a new play session for the user on the given game.
// If an open session already exists (e.g., a crashed client never called
// EndSession), it is force-closed first: its elapsed XP is computed and
// awarded with no completion bonus, so orphaned playtime is never lost.
func (s *SessionService) StartSession(externalUserID, gameID string) (*models.PlaySession, error) {
	now := s.now()

	var created *models.PlaySession
	var user *models.User

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}

		var game models.Game
		if err := tx.First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
			}
			return err
		}

		var open models.PlaySession
		err = tx.Where("user_id = ? AND status = ?", user.ID, models.SessionStatusOpen).
			First(&open).Error
		switch {
		case err == nil:
			log.Printf("⚠️ Orphaned open session %s for %s — force-closing", open.ID, externalUserID)
			if _, err := s.closeSessionTx(tx, now, user, &open, false, "session_force_close"); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		created = &models.PlaySession{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			GameID:    game.ID,
			StartedAt: now,
			Status:    models.SessionStatusOpen,
		}
		if err := tx.Create(created).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Game{}).Where("id = ?", game.ID).
			UpdateColumn("total_plays", gorm.Expr("total_plays + 1")).Error; err != nil {
			return err
		}

		user.LastActiveAt = &now
		return tx.Save(user).Error
	})
	if err != nil {
		return nil, err
	}

	s.pushRankings(user)
	return created, nil
}

// Heartbeat is the periodic keep-alive during an open session. It returns
// the elapsed minutes and *projected* XP without mutating award state; the
// only write is the user's last-activity timestamp. A heartbeat racing a
// concurrent close is a silent no-op: Success=false, no error.
func (s *SessionService) Heartbeat(externalUserID string) (*HeartbeatResult, error) {
	now := s.now()

	user, err := findUserTx(s.DB, externalUserID)
	if err != nil {
		return nil, err
	}

	var open models.PlaySession
	err = s.DB.Where("user_id = ? AND status = ?", user.ID, models.SessionStatusOpen).
		First(&open).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &HeartbeatResult{Success: false}, nil
		}
		return nil, err
	}

	if err := s.DB.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("last_active_at", now).Error; err != nil {
		return nil, err
	}

	elapsed := now.Sub(open.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	return &HeartbeatResult{
		Success:                true,
		CurrentDurationMinutes: int64(elapsed / time.Minute),
		EstimatedExp:           ExpFromMinutes(elapsed.Minutes()),
	}, nil
}

// EndSession closes the user's open session, freezes its duration and XP,
// and awards the XP (plus the flat completion bonus when completed) to the
// user and their guild in one transaction.
func (s *SessionService) EndSession(externalUserID string, completed bool) (*EndSessionResult, error) {
	now := s.now()

	var result *EndSessionResult
	var user *models.User

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}

		var open models.PlaySession
		err = tx.Where("user_id = ? AND status = ?", user.ID, models.SessionStatusOpen).
			First(&open).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w for user %s", ErrNoActiveSession, externalUserID)
			}
			return err
		}

		award, err := s.closeSessionTx(tx, now, user, &open, completed, "session_end")
		if err != nil {
			return err
		}

		result = &EndSessionResult{
			SessionID:            open.ID,
			DurationMinutes:      open.DurationMinutes,
			ExpAwarded:           open.ExpEarned,
			TotalExp:             award.TotalExp,
			TotalPlaytimeMinutes: user.TotalPlaytimeMinutes,
			Level:                award.NewLevel,
			LeveledUp:            award.LeveledUp,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.pushRankings(user)
	return result, nil
}

// closeSessionTx transitions an open session to closed: duration and XP are
// computed from the stored start time and frozen on the record, playtime is
// added to the user, and the XP flows through the consolidated award path.
func (s *SessionService) closeSessionTx(tx *gorm.DB, now time.Time, user *models.User, sess *models.PlaySession, completed bool, reason string) (*AwardResult, error) {
	elapsed := now.Sub(sess.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	duration := int64(elapsed / time.Minute)

	xp := ExpFromMinutes(elapsed.Minutes())
	if completed {
		xp += CompletionBonusExp
	}

	sess.Status = models.SessionStatusClosed
	sess.EndedAt = &now
	sess.DurationMinutes = duration
	sess.ExpEarned = xp
	sess.CompletedGame = completed
	if err := tx.Save(sess).Error; err != nil {
		return nil, err
	}

	user.TotalPlaytimeMinutes += duration

	return awardExpTx(tx, now, user, xp, reason)
}

// AwardExp grants XP from non-session sources (admin grant, event rewards).
// Same level-derivation and guild-rollup rules as session close.
func (s *SessionService) AwardExp(externalUserID string, amount int64, reason string) (*AwardResult, error) {
	now := s.now()

	var result *AwardResult
	var user *models.User

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}
		result, err = awardExpTx(tx, now, user, amount, reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.pushRankings(user)
	return result, nil
}

// ResetExp is the administrative reset: XP, level, and playtime return to
// their initial values and the user's prior contribution is subtracted from
// their guild aggregate.
func (s *SessionService) ResetExp(externalUserID string, reason string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}

		if user.GuildID != nil && user.TotalExp > 0 {
			if err := applyGuildExpDelta(tx, *user.GuildID, -user.TotalExp); err != nil {
				return err
			}
		}

		user.TotalExp = 0
		user.Level = 1
		user.TotalPlaytimeMinutes = 0
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		log.Printf("🧹 XP reset for %s (reason: %s)", externalUserID, reason)
		return nil
	})
	if err != nil {
		return err
	}

	if s.Leaderboard != nil {
		if err := s.Leaderboard.RemoveUser(context.Background(), externalUserID); err != nil {
			log.Printf("⚠️ Leaderboard removal failed for %s: %v", externalUserID, err)
		}
	}
	return nil
}

// ClearHistory bulk-deletes the user's closed sessions. The open session,
// if any, is left alone.
func (s *SessionService) ClearHistory(externalUserID string) (int64, error) {
	user, err := findUserTx(s.DB, externalUserID)
	if err != nil {
		return 0, err
	}

	res := s.DB.Where("user_id = ? AND status = ?", user.ID, models.SessionStatusClosed).
		Delete(&models.PlaySession{})
	return res.RowsAffected, res.Error
}

// RecentSessions returns the user's newest closed sessions for history views.
func (s *SessionService) RecentSessions(externalUserID string, limit int) ([]models.PlaySession, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	user, err := findUserTx(s.DB, externalUserID)
	if err != nil {
		return nil, err
	}

	var sessions []models.PlaySession
	err = s.DB.Where("user_id = ? AND status = ?", user.ID, models.SessionStatusClosed).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	return sessions, err
}

// pushRankings mirrors the user's totals into the Redis leaderboards.
// Best-effort: ranking lag is tolerable, XP state in Postgres is the truth.
func (s *SessionService) pushRankings(user *models.User) {
	if s.Leaderboard == nil || user == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Leaderboard.SetUserScores(ctx, user.ExternalUserID, user.TotalExp, user.TotalPlaytimeMinutes); err != nil {
		log.Printf("⚠️ Leaderboard update failed for %s: %v", user.ExternalUserID, err)
	}
}
