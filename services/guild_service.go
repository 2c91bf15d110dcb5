package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"retro-arcade-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// GuildService owns guild membership and the incremental maintenance of the
// guild XP aggregate. Every membership change moves the member's XP at the
// moment of the change — join adds it, leave/kick subtracts it — so the
// aggregate always equals the sum of current members' XP without re-summing.
type GuildService struct {
	DB *gorm.DB

	now func() time.Time
}

func NewGuildService(db *gorm.DB) *GuildService {
	return &GuildService{DB: db, now: time.Now}
}

// CreateGuild founds a new guild owned by the user and seeds the aggregate
// with the founder's XP. The founder also receives the guild-creation bonus
// through the consolidated award path.
func (s *GuildService) CreateGuild(externalUserID, name, description string) (*models.Guild, error) {
	now := s.now()

	var guild *models.Guild
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}
		if user.GuildID != nil {
			return fmt.Errorf("%w: %s", ErrAlreadyInGuild, externalUserID)
		}

		guild = &models.Guild{
			ID:          uuid.NewString(),
			Name:        name,
			Slug:        slug.Make(name),
			Description: description,
			OwnerID:     user.ID,
			TotalExp:    user.TotalExp,
			Level:       LevelFromExp(user.TotalExp).Level,
			MemberCount: 1,
		}
		if err := tx.Create(guild).Error; err != nil {
			return err
		}

		member := &models.GuildMember{
			ID:      uuid.NewString(),
			GuildID: guild.ID,
			UserID:  user.ID,
			Role:    models.GuildRoleOwner,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		user.GuildID = &guild.ID
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		// Founding bonus flows through the same award path as everything
		// else, so it also lands on the fresh aggregate.
		if _, err := awardExpTx(tx, now, user, GuildCreationBonusExp, "guild_create"); err != nil {
			return err
		}

		// Re-read: the bonus moved the aggregate
		return tx.First(guild, "id = ?", guild.ID).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🏰 Guild created: %s (%s) by %s", guild.Name, guild.ID, externalUserID)
	return guild, nil
}

// JoinGuild adds the user as a member and adds their current XP to the
// guild aggregate.
func (s *GuildService) JoinGuild(externalUserID, guildID string) (*models.Guild, error) {
	var guild models.Guild
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}
		if user.GuildID != nil {
			return fmt.Errorf("%w: %s", ErrAlreadyInGuild, externalUserID)
		}

		if err := tx.First(&guild, "id = ?", guildID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrGuildNotFound, guildID)
			}
			return err
		}

		member := &models.GuildMember{
			ID:      uuid.NewString(),
			GuildID: guild.ID,
			UserID:  user.ID,
			Role:    models.GuildRoleMember,
		}
		if err := tx.Create(member).Error; err != nil {
			return err
		}

		user.GuildID = &guild.ID
		if err := tx.Save(user).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Guild{}).Where("id = ?", guild.ID).
			UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error; err != nil {
			return err
		}

		if err := applyGuildExpDelta(tx, guild.ID, user.TotalExp); err != nil {
			return err
		}

		return tx.First(&guild, "id = ?", guild.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &guild, nil
}

// LeaveGuild removes the user, subtracting their XP from the aggregate.
// When the owner leaves a multi-member guild, ownership transfers to an
// admin if one exists, otherwise to an arbitrary remaining member. A sole
// owner leaving deletes the guild.
func (s *GuildService) LeaveGuild(externalUserID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := findUserTx(tx, externalUserID)
		if err != nil {
			return err
		}
		if user.GuildID == nil {
			return fmt.Errorf("%w: %s", ErrNotInGuild, externalUserID)
		}
		return s.removeMemberTx(tx, user)
	})
}

// KickMember removes another member; only the owner or an admin may kick,
// and the owner cannot be kicked.
func (s *GuildService) KickMember(actorExternalID, targetExternalID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		actor, err := findUserTx(tx, actorExternalID)
		if err != nil {
			return err
		}
		target, err := findUserTx(tx, targetExternalID)
		if err != nil {
			return err
		}
		if actor.GuildID == nil || target.GuildID == nil || *actor.GuildID != *target.GuildID {
			return fmt.Errorf("%w: %s", ErrNotInGuild, targetExternalID)
		}

		var actorMember models.GuildMember
		if err := tx.Where("guild_id = ? AND user_id = ?", *actor.GuildID, actor.ID).
			First(&actorMember).Error; err != nil {
			return err
		}
		if actorMember.Role != models.GuildRoleOwner && actorMember.Role != models.GuildRoleAdmin {
			return ErrNotGuildOwner
		}

		var guild models.Guild
		if err := tx.First(&guild, "id = ?", *target.GuildID).Error; err != nil {
			return err
		}
		if guild.OwnerID == target.ID {
			return fmt.Errorf("%w: cannot kick the owner", ErrNotGuildOwner)
		}

		return s.removeMemberTx(tx, target)
	})
}

// PromoteMember raises a member to admin; owner only.
func (s *GuildService) PromoteMember(actorExternalID, targetExternalID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		actor, err := findUserTx(tx, actorExternalID)
		if err != nil {
			return err
		}
		target, err := findUserTx(tx, targetExternalID)
		if err != nil {
			return err
		}
		if actor.GuildID == nil || target.GuildID == nil || *actor.GuildID != *target.GuildID {
			return fmt.Errorf("%w: %s", ErrNotInGuild, targetExternalID)
		}

		var guild models.Guild
		if err := tx.First(&guild, "id = ?", *actor.GuildID).Error; err != nil {
			return err
		}
		if guild.OwnerID != actor.ID {
			return ErrNotGuildOwner
		}

		return tx.Model(&models.GuildMember{}).
			Where("guild_id = ? AND user_id = ?", guild.ID, target.ID).
			Update("role", models.GuildRoleAdmin).Error
	})
}

// removeMemberTx performs the shared leave/kick bookkeeping: membership row
// gone, aggregate reduced by the member's XP as of this moment, counters
// updated, ownership transferred or guild deleted as needed.
func (s *GuildService) removeMemberTx(tx *gorm.DB, user *models.User) error {
	guildID := *user.GuildID

	var guild models.Guild
	if err := tx.First(&guild, "id = ?", guildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrGuildNotFound, guildID)
		}
		return err
	}

	if err := tx.Where("guild_id = ? AND user_id = ?", guildID, user.ID).
		Delete(&models.GuildMember{}).Error; err != nil {
		return err
	}

	user.GuildID = nil
	if err := tx.Save(user).Error; err != nil {
		return err
	}

	wasOwner := guild.OwnerID == user.ID

	var remaining []models.GuildMember
	if err := tx.Where("guild_id = ?", guildID).Order("joined_at ASC").
		Find(&remaining).Error; err != nil {
		return err
	}

	if len(remaining) == 0 {
		log.Printf("🏰 Guild %s is empty — deleting", guild.Name)
		return tx.Delete(&guild).Error
	}

	if err := tx.Model(&models.Guild{}).Where("id = ?", guildID).
		UpdateColumn("member_count", gorm.Expr("member_count - 1")).Error; err != nil {
		return err
	}

	if err := applyGuildExpDelta(tx, guildID, -user.TotalExp); err != nil {
		return err
	}

	if wasOwner {
		// Prefer an admin; otherwise whoever is left
		successor := remaining[0]
		for _, m := range remaining {
			if m.Role == models.GuildRoleAdmin {
				successor = m
				break
			}
		}
		if err := tx.Model(&models.Guild{}).Where("id = ?", guildID).
			Update("owner_id", successor.UserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.GuildMember{}).Where("id = ?", successor.ID).
			Update("role", models.GuildRoleOwner).Error; err != nil {
			return err
		}
		log.Printf("🏰 Guild %s ownership transferred to %s", guild.Name, successor.UserID)
	}

	return nil
}

// GetGuild returns a guild with its member users.
func (s *GuildService) GetGuild(guildID string) (*models.Guild, []models.User, error) {
	var guild models.Guild
	if err := s.DB.First(&guild, "id = ?", guildID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrGuildNotFound, guildID)
		}
		return nil, nil, err
	}

	var members []models.User
	if err := s.DB.Where("guild_id = ?", guildID).
		Order("total_exp DESC").
		Find(&members).Error; err != nil {
		return nil, nil, err
	}
	return &guild, members, nil
}

// ListGuilds returns guilds ordered by aggregate XP.
func (s *GuildService) ListGuilds(limit int) ([]models.Guild, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	var guilds []models.Guild
	err := s.DB.Order("total_exp DESC").Limit(limit).Find(&guilds).Error
	return guilds, err
}

// PostMessage stores a chat message. guildScoped messages require membership;
// otherwise the message lands in the global lobby.
func (s *GuildService) PostMessage(externalUserID, body string, guildScoped bool) (*models.ChatMessage, error) {
	user, err := findUserTx(s.DB, externalUserID)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   user.ID,
		SenderName: user.Username,
		Body:       body,
	}
	if guildScoped {
		if user.GuildID == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotInGuild, externalUserID)
		}
		msg.GuildID = user.GuildID
	}

	if err := s.DB.Create(msg).Error; err != nil {
		return nil, err
	}
	return msg, nil
}

// RecentMessages returns newest-first chat history for a guild or the lobby.
func (s *GuildService) RecentMessages(guildID *string, limit int) ([]models.ChatMessage, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	db := s.DB.Order("created_at DESC").Limit(limit)
	if guildID != nil {
		db = db.Where("guild_id = ?", *guildID)
	} else {
		db = db.Where("guild_id IS NULL")
	}
	var msgs []models.ChatMessage
	err := db.Find(&msgs).Error
	return msgs, err
}

// CascadeRemoveUser handles explicit account deletion observed by the
// profile sync worker: guild membership is released (with the usual
// aggregate subtraction and ownership rules), friendship edges removed,
// any open session discarded, and the local row soft-deleted.
func (s *GuildService) CascadeRemoveUser(externalUserID string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		user, err := findUserTx(tx, externalUserID)
		if err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return nil // already gone
			}
			return err
		}

		if user.GuildID != nil {
			if err := s.removeMemberTx(tx, user); err != nil {
				return err
			}
		}

		if err := tx.Where("requester_id = ? OR addressee_id = ?", user.ID, user.ID).
			Delete(&models.Friendship{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).
			Delete(&models.PlaySession{}).Error; err != nil {
			return err
		}

		log.Printf("🗑️ Account deletion cascade applied for %s", externalUserID)
		return tx.Delete(user).Error
	})
}
