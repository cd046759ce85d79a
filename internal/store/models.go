package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// PlayerDateStats is one archived raw record. Seq keeps the provider order
// within a date, so a player who appears twice (doubleheaders) keeps both rows.
type PlayerDateStats struct {
	StatDate        time.Time       `json:"stat_date" db:"stat_date"`
	Seq             int             `json:"seq" db:"seq"`
	PlayerName      string          `json:"player_name" db:"player_name"`
	Position        string          `json:"position" db:"position"`
	PrimaryPosition string          `json:"primary_position" db:"primary_position"`
	BatterStats     json.RawMessage `json:"batter_stats,omitempty" db:"batter_stats"`
	PitcherStats    json.RawMessage `json:"pitcher_stats,omitempty" db:"pitcher_stats"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// NullJSON maps an empty document to SQL NULL for JSONB columns.
func NullJSON(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 || string(raw) == "null" {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
