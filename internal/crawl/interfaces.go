package crawl

import (
	"context"
	"time"

	"github.com/JakeFAU/aram-match-crawler/internal/match"
	"github.com/JakeFAU/aram-match-crawler/internal/riot"
)

// Store persists the frontier and the match documents.
type Store interface {
	ClaimNext(ctx context.Context, cutoff, now int64, claimedBy string) (match.SummonerRecord, error)
	UpsertSummoner(ctx context.Context, puuid string) error
	UpsertMatch(ctx context.Context, doc match.Document) error
	NewMatchIDs(ctx context.Context, candidates []string) ([]string, error)
}

// MatchAPI is the upstream game-data API.
type MatchAPI interface {
	AccountByRiotID(ctx context.Context, gameName, tagLine string) (riot.Account, error)
	MatchIDsByPUUID(ctx context.Context, puuid string, window time.Duration, count int) ([]string, error)
	MatchByID(ctx context.Context, matchID string) (*riot.Match, error)
}

// Publisher pushes validated match documents to the downstream stream.
type Publisher interface {
	Publish(ctx context.Context, payload any) (string, error)
}

// Archive stores raw match payloads for later inspection.
type Archive interface {
	Put(ctx context.Context, matchID string, data []byte) (string, error)
}

// Clock abstracts time.Now so tests can pin the claim window.
type Clock interface {
	Now() time.Time
}
