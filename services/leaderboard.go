package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardExpKey      = "leaderboard:exp"
	leaderboardPlaytimeKey = "leaderboard:playtime"
)

// LeaderboardService keeps global XP and playtime rankings in Redis sorted
// sets, keyed by external user ID. Postgres stays the source of truth; the
// sets are a read-optimized mirror updated on every award.
type LeaderboardService struct {
	rdb *redis.Client
}

// NewLeaderboardService connects using REDIS_ADDR / REDIS_PASSWORD /
// REDIS_DB. Returns an error if Redis is unreachable.
func NewLeaderboardService() (*LeaderboardService, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		} else {
			log.Printf("⚠️ Invalid REDIS_DB value %q, using 0", v)
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           db,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	log.Printf("✅ Leaderboard Redis connected at %s (DB %d)", addr, db)
	return &LeaderboardService{rdb: rdb}, nil
}

// RankedUser is one leaderboard row.
type RankedUser struct {
	ExternalUserID string `json:"external_user_id"`
	Score          int64  `json:"score"`
	Rank           int64  `json:"rank"`
}

// SetUserScores writes the user's absolute totals to both boards. Absolute
// ZAdd (not ZIncrBy) keeps the mirror self-healing: whatever Postgres says
// wins on the next award.
func (l *LeaderboardService) SetUserScores(ctx context.Context, externalUserID string, totalExp, playtimeMinutes int64) error {
	pipe := l.rdb.Pipeline()
	pipe.ZAdd(ctx, leaderboardExpKey, redis.Z{Score: float64(totalExp), Member: externalUserID})
	pipe.ZAdd(ctx, leaderboardPlaytimeKey, redis.Z{Score: float64(playtimeMinutes), Member: externalUserID})
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set leaderboard scores: %w", err)
	}
	return nil
}

// TopByExp returns the top N users by cumulative XP (1-based ranks).
func (l *LeaderboardService) TopByExp(ctx context.Context, limit int64) ([]RankedUser, error) {
	return l.top(ctx, leaderboardExpKey, limit)
}

// TopByPlaytime returns the top N users by total playtime minutes.
func (l *LeaderboardService) TopByPlaytime(ctx context.Context, limit int64) ([]RankedUser, error) {
	return l.top(ctx, leaderboardPlaytimeKey, limit)
}

func (l *LeaderboardService) top(ctx context.Context, key string, limit int64) ([]RankedUser, error) {
	if limit < 1 || limit > 100 {
		limit = 25
	}
	zs, err := l.rdb.ZRevRangeWithScores(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard %s: %w", key, err)
	}

	entries := make([]RankedUser, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, RankedUser{
			ExternalUserID: member,
			Score:          int64(z.Score),
			Rank:           int64(i) + 1,
		})
	}
	return entries, nil
}

// UserRank returns the user's XP-board position (1-based) and score.
func (l *LeaderboardService) UserRank(ctx context.Context, externalUserID string) (*RankedUser, error) {
	rank, err := l.rdb.ZRevRank(ctx, leaderboardExpKey, externalUserID).Result()
	if err != nil {
		return nil, fmt.Errorf("user not ranked: %w", err)
	}
	score, err := l.rdb.ZScore(ctx, leaderboardExpKey, externalUserID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read score: %w", err)
	}
	return &RankedUser{
		ExternalUserID: externalUserID,
		Score:          int64(score),
		Rank:           rank + 1,
	}, nil
}

// RemoveUser drops the user from all boards (admin reset, account deletion).
func (l *LeaderboardService) RemoveUser(ctx context.Context, externalUserID string) error {
	pipe := l.rdb.Pipeline()
	pipe.ZRem(ctx, leaderboardExpKey, externalUserID)
	pipe.ZRem(ctx, leaderboardPlaytimeKey, externalUserID)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove user from leaderboards: %w", err)
	}
	return nil
}
