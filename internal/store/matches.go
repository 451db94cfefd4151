package store

import (
	"context"
	"fmt"

	"github.com/JakeFAU/aram-match-crawler/internal/match"
)

const upsertMatchSQL = `
INSERT INTO matches (match_id, blue_champs, red_champs, blue_win, game_start)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (match_id) DO NOTHING`

// UpsertMatch inserts a match document unless its id already exists.
// First writer wins: a later insert with the same id never overwrites any
// field of the stored row.
func (s *Store) UpsertMatch(ctx context.Context, doc match.Document) error {
	_, err := s.pool.Exec(ctx, upsertMatchSQL,
		doc.MatchID,
		doc.BlueChamps[:],
		doc.RedChamps[:],
		doc.BlueWin,
		doc.GameStart,
	)
	if err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}

const knownMatchIDsSQL = `
SELECT match_id FROM matches WHERE match_id = ANY($1)`

// NewMatchIDs returns the candidates that have no stored document yet.
// An empty candidate list returns empty without touching the database.
// Results keep the input order.
func (s *Store) NewMatchIDs(ctx context.Context, candidates []string) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, knownMatchIDsSQL, candidates)
	if err != nil {
		return nil, fmt.Errorf("filter match ids: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{}, len(candidates))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan match id: %w", err)
		}
		known[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("filter match ids: %w", err)
	}

	fresh := make([]string, 0, len(candidates)-len(known))
	for _, id := range candidates {
		if _, ok := known[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	return fresh, nil
}

// MatchCount returns the number of stored match documents.
func (s *Store) MatchCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM matches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count matches: %w", err)
	}
	return n, nil
}
