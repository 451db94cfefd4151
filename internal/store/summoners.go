package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/aram-match-crawler/internal/match"
)

// ErrNoEligibleSummoner reports that every known summoner was claimed
// within the current staleness window. This is expected emptiness, not a
// failure: the frontier simply has no due work.
var ErrNoEligibleSummoner = errors.New("store: no summoner due for polling")

const claimNextSQL = `
UPDATE summoners
   SET last_claimed_at = $1,
       claimed_by      = $2
 WHERE puuid = (
       SELECT puuid
         FROM summoners
        WHERE last_claimed_at < $3
        ORDER BY last_claimed_at
        LIMIT 1
          FOR UPDATE SKIP LOCKED)
RETURNING puuid, last_claimed_at, claimed_by`

// ClaimNext selects a summoner whose last claim is older than cutoff and
// stamps it with now and the claimer's tag in the same statement. The
// single UPDATE with FOR UPDATE SKIP LOCKED is what keeps concurrent
// instances from claiming the same summoner inside one window; it is the
// only mutual exclusion in the pipeline, so it must stay one statement.
func (s *Store) ClaimNext(ctx context.Context, cutoff, now int64, claimedBy string) (match.SummonerRecord, error) {
	var rec match.SummonerRecord
	err := s.pool.QueryRow(ctx, claimNextSQL, now, claimedBy, cutoff).
		Scan(&rec.PUUID, &rec.LastClaimedAt, &rec.ClaimedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return match.SummonerRecord{}, ErrNoEligibleSummoner
	}
	if err != nil {
		return match.SummonerRecord{}, fmt.Errorf("claim summoner: %w", err)
	}
	return rec, nil
}

const upsertSummonerSQL = `
INSERT INTO summoners (puuid)
VALUES ($1)
ON CONFLICT (puuid) DO NOTHING`

// UpsertSummoner registers a summoner if it is not already known. The row
// is created with last_claimed_at = 0 so it is immediately eligible for
// claiming; an existing row keeps its staleness clock untouched.
func (s *Store) UpsertSummoner(ctx context.Context, puuid string) error {
	if _, err := s.pool.Exec(ctx, upsertSummonerSQL, puuid); err != nil {
		return fmt.Errorf("upsert summoner: %w", err)
	}
	return nil
}

// SummonerCount returns the size of the known frontier.
func (s *Store) SummonerCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM summoners`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count summoners: %w", err)
	}
	return n, nil
}
