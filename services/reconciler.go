// services/reconciler.go
package services

import (
	"log"
	"time"

	"retro-arcade-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartAggregateReconciler runs a periodic sweep comparing each guild's
// stored XP aggregate against the true sum of current members' XP. The
// aggregate is maintained incrementally by the award and membership paths,
// so any mismatch means some code path mutated user XP without rolling it
// up — the sweep logs the drift and repairs the counter.
func (s *GuildService) StartAggregateReconciler(interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if repaired, err := s.ReconcileGuildAggregates(); err != nil {
				log.Printf("[Reconciler] sweep failed: %v", err)
			} else if repaired > 0 {
				log.Printf("[Reconciler] repaired %d drifted guild aggregate(s)", repaired)
			}
		}),
	)
}

// ReconcileGuildAggregates does one full sweep and returns how many guilds
// needed repair.
func (s *GuildService) ReconcileGuildAggregates() (int, error) {
	var guilds []models.Guild
	if err := s.DB.Find(&guilds).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for _, guild := range guilds {
		var trueSum int64
		err := s.DB.Model(&models.User{}).
			Where("guild_id = ?", guild.ID).
			Select("COALESCE(SUM(total_exp), 0)").
			Scan(&trueSum).Error
		if err != nil {
			log.Printf("[Reconciler] failed to sum members of guild %s: %v", guild.ID, err)
			continue
		}

		if trueSum == guild.TotalExp {
			continue
		}

		log.Printf("⚠️ [Reconciler] Guild %s aggregate drift: stored=%d true=%d (Δ=%d)",
			guild.Name, guild.TotalExp, trueSum, trueSum-guild.TotalExp)

		guild.TotalExp = trueSum
		guild.Level = LevelFromExp(trueSum).Level
		if err := s.DB.Save(&guild).Error; err != nil {
			log.Printf("[Reconciler] failed to repair guild %s: %v", guild.ID, err)
			continue
		}
		repaired++
	}
	return repaired, nil
}
