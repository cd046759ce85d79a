package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fortuna/mlbh2h/internal/stats"
	"github.com/fortuna/mlbh2h/internal/store"
	"github.com/lib/pq"
)

const dateLayout = "2006-01-02"

// StatsRepository archives per-date raw player records.
type StatsRepository struct {
	db *store.Database
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *store.Database) *StatsRepository {
	return &StatsRepository{db: db}
}

// SaveDate replaces the archived records of date.
func (r *StatsRepository) SaveDate(ctx context.Context, date string, players []stats.RawPlayer) error {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", date, err)
	}
	rows, err := ToRows(day, players)
	if err != nil {
		return err
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM player_date_stats WHERE stat_date = $1`, day); err != nil {
		return fmt.Errorf("clear %s: %w", date, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO player_date_stats (
			stat_date, seq, player_name, position, primary_position, batter_stats, pitcher_stats
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.ExecContext(ctx,
			row.StatDate, row.Seq, row.PlayerName, row.Position, row.PrimaryPosition,
			store.NullJSON(row.BatterStats), store.NullJSON(row.PitcherStats),
		)
		if err != nil {
			return fmt.Errorf("insert %s #%d: %w", date, row.Seq, err)
		}
	}

	return tx.Commit()
}

// LoadDates returns the archived records of every requested date that has
// any. Records keep their saved order.
func (r *StatsRepository) LoadDates(ctx context.Context, dates []string) (map[string][]stats.RawPlayer, error) {
	query := `
		SELECT stat_date, seq, player_name, position, primary_position, batter_stats, pitcher_stats, created_at
		FROM player_date_stats
		WHERE stat_date = ANY($1::date[])
		ORDER BY stat_date, seq
	`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(dates))
	if err != nil {
		return nil, fmt.Errorf("querying player date stats: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]stats.RawPlayer)
	for rows.Next() {
		var row store.PlayerDateStats
		var batter, pitcher []byte
		if err := rows.Scan(&row.StatDate, &row.Seq, &row.PlayerName, &row.Position,
			&row.PrimaryPosition, &batter, &pitcher, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan player date stats: %w", err)
		}
		row.BatterStats = batter
		row.PitcherStats = pitcher

		p, err := FromRow(row)
		if err != nil {
			return nil, err
		}
		date := row.StatDate.Format(dateLayout)
		out[date] = append(out[date], p)
	}

	return out, rows.Err()
}

// ListDates returns every archived date in ascending order.
func (r *StatsRepository) ListDates(ctx context.Context) ([]string, error) {
	rows, err := r.db.DB().QueryContext(ctx, `SELECT DISTINCT stat_date FROM player_date_stats ORDER BY stat_date`)
	if err != nil {
		return nil, fmt.Errorf("listing dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d.Format(dateLayout))
	}
	return dates, rows.Err()
}

// ToRows flattens raw players into archive rows for date.
func ToRows(date time.Time, players []stats.RawPlayer) ([]store.PlayerDateStats, error) {
	rows := make([]store.PlayerDateStats, 0, len(players))
	for i, p := range players {
		row := store.PlayerDateStats{
			StatDate:        date,
			Seq:             i,
			PlayerName:      p.Name,
			Position:        p.Position,
			PrimaryPosition: p.PrimaryPosition,
		}

		if p.BatterStats != nil {
			data, err := json.Marshal(p.BatterStats)
			if err != nil {
				return nil, fmt.Errorf("marshal batter stats: %w", err)
			}
			row.BatterStats = data
		}
		if p.PitcherStats != nil {
			data, err := json.Marshal(p.PitcherStats)
			if err != nil {
				return nil, fmt.Errorf("marshal pitcher stats: %w", err)
			}
			row.PitcherStats = data
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FromRow rebuilds a raw player from an archive row.
func FromRow(row store.PlayerDateStats) (stats.RawPlayer, error) {
	p := stats.RawPlayer{
		Name:            row.PlayerName,
		Position:        row.Position,
		PrimaryPosition: row.PrimaryPosition,
	}

	if store.NullJSON(row.BatterStats).Valid {
		p.BatterStats = &stats.BatterStats{}
		if err := json.Unmarshal(row.BatterStats, p.BatterStats); err != nil {
			return p, fmt.Errorf("decode batter stats for %s: %w", row.PlayerName, err)
		}
	}
	if store.NullJSON(row.PitcherStats).Valid {
		p.PitcherStats = &stats.PitcherStats{}
		if err := json.Unmarshal(row.PitcherStats, p.PitcherStats); err != nil {
			return p, fmt.Errorf("decode pitcher stats for %s: %w", row.PlayerName, err)
		}
	}
	return p, nil
}
