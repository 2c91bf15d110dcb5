// workers/profile_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"retro-arcade-system/models"
	"retro-arcade-system/services"
	"retro-arcade-system/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileFromIdentity matches the JSON response of the identity provider's
// profile sync endpoint. Users sign up there; we only mirror what gameplay
// needs.
type ProfileFromIdentity struct {
	ExternalID string     `json:"external_id"`
	Username   string     `json:"username"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"` // set when the account was deleted upstream
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// GetProfileChangesResponse is the top-level structure of the sync response.
type GetProfileChangesResponse struct {
	Profiles []ProfileFromIdentity `json:"profiles"`
}

// ProfileSyncWorker mirrors identity-provider profiles into the local users
// table. A profile first seen here is the "created on first login" moment;
// a profile reported deleted triggers the account-deletion cascade (guild
// membership, friendships, sessions).
type ProfileSyncWorker struct {
	db           *gorm.DB
	guilds       *services.GuildService
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8500"
	endpointPath string // e.g., "/api/v1/public/profiles"
	serviceToken string
	httpClient   *http.Client
}

func NewProfileSyncWorker(db *gorm.DB, guilds *services.GuildService, baseURL, endpointPath, serviceToken string) *ProfileSyncWorker {
	return &ProfileSyncWorker{
		db:           db,
		guilds:       guilds,
		interval:     1 * time.Minute,
		baseURL:      baseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient:   utils.HTTPClient,
	}
}

func (w *ProfileSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Profile Sync Worker (identity provider → users)…")
	go w.run(ctx)
}

func (w *ProfileSyncWorker) run(ctx context.Context) {
	// Initial sync — backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Profile sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Profile Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local users table.
func (w *ProfileSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *ProfileSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid profile sync base URL '%s': %w", w.baseURL, err)
	}
	endpoint := base.JoinPath(w.endpointPath)
	q := endpoint.Query()
	q.Set("updated_since", sinceStr)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("profile sync request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("profile sync returned %d: %s", resp.StatusCode, string(body))
	}

	var changes GetProfileChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&changes); err != nil {
		return fmt.Errorf("failed to decode profile sync response: %w", err)
	}

	if len(changes.Profiles) == 0 {
		return nil
	}

	synced, deleted := 0, 0
	for _, p := range changes.Profiles {
		if p.ExternalID == "" || p.Username == "" {
			continue
		}

		if p.DeletedAt != nil {
			if err := w.guilds.CascadeRemoveUser(p.ExternalID); err != nil {
				log.Printf("❌ [SYNC] deletion cascade failed for %s: %v", p.ExternalID, err)
				continue
			}
			deleted++
			continue
		}

		user := models.User{
			ID:             uuid.NewString(),
			ExternalUserID: p.ExternalID,
			Username:       p.Username,
			AvatarURL:      p.AvatarURL,
		}
		// First login creates the row; later syncs only refresh profile
		// fields and never touch progression state.
		err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "avatar_url", "updated_at"}),
		}).Create(&user).Error
		if err != nil {
			log.Printf("❌ [SYNC] upsert failed for %s: %v", p.ExternalID, err)
			continue
		}
		synced++
	}

	log.Printf("[SYNC] ✅ Profiles synced: %d upserted, %d deleted (since %s)", synced, deleted, sinceStr)
	return nil
}
