// Package crawl implements the indefinite match-ingestion loop: claim a
// summoner from the frontier, list their recent matches, drop known ids,
// validate and persist the rest, and grow the frontier from participants.
package crawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/aram-match-crawler/internal/match"
	"github.com/JakeFAU/aram-match-crawler/internal/metrics"
	"github.com/JakeFAU/aram-match-crawler/internal/riot"
	"github.com/JakeFAU/aram-match-crawler/internal/store"
)

// Config controls Crawler behavior.
type Config struct {
	// Window bounds match recency and is reused as the summoner
	// staleness threshold.
	Window time.Duration
	// PollInterval is how long the loop sleeps when no summoner is due.
	PollInterval time.Duration
	// MatchCount caps how many match ids are listed per claim.
	MatchCount int
	// InstanceID tags claims made by this process. Generated when empty.
	InstanceID string
}

// Crawler runs the ingestion pipeline against its ports.
type Crawler struct {
	store     Store
	api       MatchAPI
	publisher Publisher
	archive   Archive
	clock     Clock
	cfg       Config
	logger    *zap.Logger

	// seenPUUIDs suppresses repeat participant upserts within this
	// process. The store upsert is idempotent, so a bloom false positive
	// can only skip a redundant-looking write, never corrupt stored data.
	mu         sync.Mutex
	seenPUUIDs *bloom.BloomFilter
}

// New constructs a Crawler.
func New(st Store, api MatchAPI, publisher Publisher, archive Archive, clock Clock, cfg Config, logger *zap.Logger) *Crawler {
	if cfg.MatchCount <= 0 {
		cfg.MatchCount = 100
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Crawler{
		store:      st,
		api:        api,
		publisher:  publisher,
		archive:    archive,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
		seenPUUIDs: bloom.NewWithEstimates(1_000_000, 0.001),
	}
}

// Seed resolves a Riot ID and registers its account on the frontier.
// Idempotent; run at startup so an empty database has somewhere to start.
func (c *Crawler) Seed(ctx context.Context, gameName, tagLine string) error {
	account, err := c.api.AccountByRiotID(ctx, gameName, tagLine)
	if err != nil {
		return fmt.Errorf("resolve seed %s#%s: %w", gameName, tagLine, err)
	}
	if err := c.store.UpsertSummoner(ctx, account.PUUID); err != nil {
		return err
	}
	c.logger.Info("frontier seeded",
		zap.String("riot_id", gameName+"#"+tagLine),
		zap.String("puuid", account.PUUID),
	)
	return nil
}

// Run blocks, processing one claimed summoner at a time until the context
// finishes. An exhausted frontier is waited out; a malformed or upstream-
// pruned match is skipped; transport and store failures are returned so a
// supervisor can restart the process.
func (c *Crawler) Run(ctx context.Context) error {
	c.logger.Info("crawl loop started",
		zap.String("instance_id", c.cfg.InstanceID),
		zap.Duration("window", c.cfg.Window),
	)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.runOnce(ctx)
		if errors.Is(err, store.ErrNoEligibleSummoner) {
			c.logger.Debug("frontier exhausted, waiting",
				zap.Duration("poll_interval", c.cfg.PollInterval))
			select {
			case <-time.After(c.cfg.PollInterval):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}
		if err != nil {
			return err
		}
	}
}

// runOnce executes one full claim cycle.
func (c *Crawler) runOnce(ctx context.Context) error {
	now := c.clock.Now().Unix()
	cutoff := now - int64(c.cfg.Window/time.Second)

	rec, err := c.store.ClaimNext(ctx, cutoff, now, c.cfg.InstanceID)
	if err != nil {
		if errors.Is(err, store.ErrNoEligibleSummoner) {
			metrics.ObserveClaim("exhausted")
		} else {
			metrics.ObserveClaim("error")
		}
		return err
	}
	metrics.ObserveClaim("claimed")

	ids, err := c.api.MatchIDsByPUUID(ctx, rec.PUUID, c.cfg.Window, c.cfg.MatchCount)
	if err != nil {
		return fmt.Errorf("list match ids for %s: %w", rec.PUUID, err)
	}

	fresh, err := c.store.NewMatchIDs(ctx, ids)
	if err != nil {
		return err
	}
	metrics.ObserveMatchesDuplicate(len(ids) - len(fresh))

	c.logger.Debug("summoner claimed",
		zap.String("puuid", rec.PUUID),
		zap.Int("listed", len(ids)),
		zap.Int("new", len(fresh)),
	)

	for _, id := range fresh {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.processMatch(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// processMatch ingests a single match id: fetch, archive, validate,
// persist, discover participants, publish.
func (c *Crawler) processMatch(ctx context.Context, matchID string) error {
	raw, err := c.api.MatchByID(ctx, matchID)
	if errors.Is(err, riot.ErrMatchNotFound) {
		// The API listed this id moments ago; upstream has pruned it.
		metrics.ObserveMatchMissing()
		c.logger.Warn("match gone upstream", zap.String("match_id", matchID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch match %s: %w", matchID, err)
	}

	c.archiveRaw(ctx, matchID, raw)

	doc, puuids, err := match.FromRiot(raw)
	if err != nil {
		if match.IsValidationError(err) {
			metrics.ObserveMatchInvalid(match.Reason(err))
			c.logger.Warn("match failed validation",
				zap.String("match_id", matchID),
				zap.Error(err),
			)
			return nil
		}
		return err
	}

	if err := c.store.UpsertMatch(ctx, doc); err != nil {
		return err
	}
	metrics.ObserveMatchIngested()

	discovered := 0
	for _, puuid := range puuids {
		if c.alreadySeen(puuid) {
			continue
		}
		if err := c.store.UpsertSummoner(ctx, puuid); err != nil {
			return err
		}
		c.markSeen(puuid)
		discovered++
	}
	metrics.ObserveSummonersDiscovered(discovered)

	c.publishDocument(ctx, doc)

	c.logger.Info("match ingested",
		zap.String("match_id", doc.MatchID),
		zap.Bool("blue_win", doc.BlueWin),
		zap.Int("summoners_upserted", discovered),
	)
	return nil
}

// archiveRaw is best effort: a failed archive write never blocks ingestion.
func (c *Crawler) archiveRaw(ctx context.Context, matchID string, raw *riot.Match) {
	if c.archive == nil {
		return
	}
	data, err := json.Marshal(raw)
	if err != nil {
		c.logger.Warn("marshal raw match for archive", zap.String("match_id", matchID), zap.Error(err))
		return
	}
	if _, err := c.archive.Put(ctx, matchID, data); err != nil {
		c.logger.Warn("archive raw match", zap.String("match_id", matchID), zap.Error(err))
	}
}

// publishDocument is best effort: the stored document is the source of
// truth, the stream is a convenience for the trainer.
func (c *Crawler) publishDocument(ctx context.Context, doc match.Document) {
	if c.publisher == nil {
		return
	}
	if _, err := c.publisher.Publish(ctx, doc); err != nil {
		c.logger.Warn("publish match document", zap.String("match_id", doc.MatchID), zap.Error(err))
	}
}

func (c *Crawler) alreadySeen(puuid string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seenPUUIDs.TestString(puuid)
}

func (c *Crawler) markSeen(puuid string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seenPUUIDs.AddString(puuid)
}
