package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"retro-arcade-system/models"

	"gorm.io/gorm"
)

// AwardResult reports the outcome of an XP grant.
type AwardResult struct {
	LeveledUp bool  `json:"leveled_up"`
	OldLevel  int   `json:"old_level"`
	NewLevel  int   `json:"new_level"`
	TotalExp  int64 `json:"total_exp"`
}

// awardExpTx is the single entry point every XP source routes through
// (session close, friend bonus, guild-creation bonus, admin grant). It adds
// the amount to the user's cumulative XP, re-derives the level, and applies
// the same delta to the user's guild aggregate so the two counters cannot
// diverge per call site. Must run inside the caller's transaction.
func awardExpTx(tx *gorm.DB, now time.Time, user *models.User, amount int64, reason string) (*AwardResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("negative XP award (%d) for %s rejected", amount, user.ExternalUserID)
	}

	oldLevel := user.Level

	user.TotalExp += amount
	lp := LevelFromExp(user.TotalExp)
	user.Level = lp.Level
	if lp.Level > oldLevel {
		user.LastLevelUpAt = &now
	}
	user.LastActiveAt = &now

	if err := tx.Save(user).Error; err != nil {
		return nil, err
	}

	if user.GuildID != nil && amount != 0 {
		if err := applyGuildExpDelta(tx, *user.GuildID, amount); err != nil {
			return nil, err
		}
	}

	log.Printf("🕹️ XP awarded: %s +%d → XP=%d, Lvl=%d (reason: %s)",
		user.ExternalUserID, amount, user.TotalExp, user.Level, reason)

	return &AwardResult{
		LeveledUp: lp.Level > oldLevel,
		OldLevel:  oldLevel,
		NewLevel:  lp.Level,
		TotalExp:  user.TotalExp,
	}, nil
}

// applyGuildExpDelta adds a (possibly negative) XP delta to the guild's
// running aggregate and recomputes the guild level with the same curve.
// The aggregate is never re-summed from members here; negative underflow
// from leave/kick subtraction is clamped to zero.
func applyGuildExpDelta(tx *gorm.DB, guildID string, delta int64) error {
	var guild models.Guild
	if err := tx.First(&guild, "id = ?", guildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrGuildNotFound, guildID)
		}
		return err
	}

	guild.TotalExp += delta
	if guild.TotalExp < 0 {
		guild.TotalExp = 0
	}
	guild.Level = LevelFromExp(guild.TotalExp).Level

	return tx.Save(&guild).Error
}

// findUserTx resolves the gateway's external user ID to the local row.
func findUserTx(tx *gorm.DB, externalUserID string) (*models.User, error) {
	var user models.User
	if err := tx.Where("external_user_id = ?", externalUserID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, externalUserID)
		}
		return nil, err
	}
	return &user, nil
}
