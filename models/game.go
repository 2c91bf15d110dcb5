// models/game.go
package models

import "time"

const (
	GameCategoryAction   = "action"
	GameCategoryPuzzle   = "puzzle"
	GameCategoryArcade   = "arcade"
	GameCategoryStrategy = "strategy"
	GameCategorySports   = "sports"
)

// Game is one playable Flash title in the catalog.
type Game struct {
	ID               string `json:"id" gorm:"primaryKey"`
	Name             string `json:"name" gorm:"not null"`
	Slug             string `json:"slug" gorm:"uniqueIndex"`
	ShortDescription string `json:"short_description"`
	LongDescription  string `json:"long_description"`
	Category         string `json:"category"`
	AgeRating        string `json:"age_rating"`

	// 🖼️ Media
	MainLogoURL string `json:"main_logo_url"` // public CDN URL

	// 📁 Core file: uploaded .swf (or zip archive extracted under public/flash)
	FileURL  string `json:"file_url"`  // local archive path (internal use)
	PlayPath string `json:"play_path"` // URL path of the playable .swf

	// Popularity counters
	TotalPlays int64 `json:"total_plays" gorm:"default:0"`

	// 🎛️ Publishing state
	Status    string     `json:"status" gorm:"default:'draft'"` // draft | scheduled | published
	PublishAt *time.Time `json:"publish_at"`                    // only used if scheduled

	Timestamps
}
