package crawl

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	memoryarchive "github.com/JakeFAU/aram-match-crawler/internal/archive/memory"
	"github.com/JakeFAU/aram-match-crawler/internal/match"
	"github.com/JakeFAU/aram-match-crawler/internal/metrics"
	memorypublisher "github.com/JakeFAU/aram-match-crawler/internal/publisher/memory"
	"github.com/JakeFAU/aram-match-crawler/internal/riot"
	"github.com/JakeFAU/aram-match-crawler/internal/store"
)

type fakeStore struct {
	mu         sync.Mutex
	claims     []match.SummonerRecord
	claimCalls int
	summoners  map[string]int
	matches    map[string]match.Document
	known      map[string]struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		summoners: make(map[string]int),
		matches:   make(map[string]match.Document),
		known:     make(map[string]struct{}),
	}
}

func (f *fakeStore) ClaimNext(_ context.Context, _, _ int64, _ string) (match.SummonerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimCalls++
	if len(f.claims) == 0 {
		return match.SummonerRecord{}, store.ErrNoEligibleSummoner
	}
	rec := f.claims[0]
	f.claims = f.claims[1:]
	return rec, nil
}

func (f *fakeStore) UpsertSummoner(_ context.Context, puuid string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summoners[puuid]++
	return nil
}

func (f *fakeStore) UpsertMatch(_ context.Context, doc match.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.matches[doc.MatchID]; !ok {
		f.matches[doc.MatchID] = doc
	}
	return nil
}

func (f *fakeStore) NewMatchIDs(_ context.Context, candidates []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var fresh []string
	for _, id := range candidates {
		if _, ok := f.known[id]; ok {
			continue
		}
		if _, ok := f.matches[id]; ok {
			continue
		}
		fresh = append(fresh, id)
	}
	return fresh, nil
}

func (f *fakeStore) summonerUpserts(puuid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summoners[puuid]
}

type fakeAPI struct {
	accounts   map[string]riot.Account
	idsByPUUID map[string][]string
	matches    map[string]*riot.Match
	listErr    error
}

func (f *fakeAPI) AccountByRiotID(_ context.Context, gameName, tagLine string) (riot.Account, error) {
	account, ok := f.accounts[gameName+"#"+tagLine]
	if !ok {
		return riot.Account{}, riot.ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeAPI) MatchIDsByPUUID(_ context.Context, puuid string, _ time.Duration, _ int) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.idsByPUUID[puuid], nil
}

func (f *fakeAPI) MatchByID(_ context.Context, matchID string) (*riot.Match, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return nil, riot.ErrMatchNotFound
	}
	return m, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func rawMatch(id string, puuidBase string) *riot.Match {
	m := &riot.Match{}
	m.Metadata.MatchID = id
	m.Info.GameStartTimestamp = 1700000000000
	m.Info.QueueID = riot.ARAM
	for i := 0; i < 10; i++ {
		team := riot.TeamBlue
		if i >= 5 {
			team = riot.TeamRed
		}
		m.Info.Participants = append(m.Info.Participants, riot.Participant{
			PUUID:      fmt.Sprintf("%s-%d", puuidBase, i),
			ChampionID: int32(10 + i),
			TeamID:     team,
		})
	}
	m.Info.Teams = []riot.TeamInfo{
		{TeamID: riot.TeamBlue, Win: false},
		{TeamID: riot.TeamRed, Win: true},
	}
	return m
}

func newTestCrawler(st *fakeStore, api *fakeAPI, publisher *memorypublisher.Publisher) *Crawler {
	metrics.Init()
	return New(st, api, publisher, memoryarchive.NewBlobStore(), fixedClock{now: time.Unix(1700005000, 0)}, Config{
		Window:       7 * 24 * time.Hour,
		PollInterval: 10 * time.Millisecond,
		MatchCount:   100,
		InstanceID:   "test-instance",
	}, zap.NewNop())
}

func TestSeedRegistersAccount(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	api := &fakeAPI{accounts: map[string]riot.Account{
		"Rock Solid#EUW": {PUUID: "puuid-seed", GameName: "Rock Solid", TagLine: "EUW"},
	}}
	c := newTestCrawler(st, api, memorypublisher.New())

	require.NoError(t, c.Seed(context.Background(), "Rock Solid", "EUW"))
	require.Equal(t, 1, st.summonerUpserts("puuid-seed"))
}

func TestSeedUnknownRiotID(t *testing.T) {
	t.Parallel()

	c := newTestCrawler(newFakeStore(), &fakeAPI{}, memorypublisher.New())

	err := c.Seed(context.Background(), "Nobody", "EUW")
	require.ErrorIs(t, err, riot.ErrAccountNotFound)
}

func TestRunOnceIngestsFreshMatches(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.claims = []match.SummonerRecord{{PUUID: "puuid-seed"}}
	st.known["EUW1_old"] = struct{}{}

	api := &fakeAPI{
		idsByPUUID: map[string][]string{
			"puuid-seed": {"EUW1_old", "EUW1_new"},
		},
		matches: map[string]*riot.Match{
			"EUW1_new": rawMatch("EUW1_new", "player"),
		},
	}
	publisher := memorypublisher.New()
	c := newTestCrawler(st, api, publisher)

	require.NoError(t, c.runOnce(context.Background()))

	doc, ok := st.matches["EUW1_new"]
	require.True(t, ok)
	require.False(t, doc.BlueWin)
	require.Equal(t, [5]int32{10, 11, 12, 13, 14}, doc.BlueChamps)
	require.Equal(t, [5]int32{15, 16, 17, 18, 19}, doc.RedChamps)

	for i := 0; i < 10; i++ {
		require.Equal(t, 1, st.summonerUpserts(fmt.Sprintf("player-%d", i)))
	}
	require.Len(t, publisher.Messages(), 1)
}

func TestRunOnceSkipsMissingMatch(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.claims = []match.SummonerRecord{{PUUID: "puuid-seed"}}

	api := &fakeAPI{
		idsByPUUID: map[string][]string{
			"puuid-seed": {"EUW1_gone", "EUW1_new"},
		},
		matches: map[string]*riot.Match{
			"EUW1_new": rawMatch("EUW1_new", "player"),
		},
	}
	c := newTestCrawler(st, api, memorypublisher.New())

	require.NoError(t, c.runOnce(context.Background()))
	require.NotContains(t, st.matches, "EUW1_gone")
	require.Contains(t, st.matches, "EUW1_new")
}

func TestRunOnceSkipsInvalidMatch(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.claims = []match.SummonerRecord{{PUUID: "puuid-seed"}}

	broken := rawMatch("EUW1_broken", "afk")
	broken.Info.Participants = broken.Info.Participants[:9]

	api := &fakeAPI{
		idsByPUUID: map[string][]string{
			"puuid-seed": {"EUW1_broken", "EUW1_new"},
		},
		matches: map[string]*riot.Match{
			"EUW1_broken": broken,
			"EUW1_new":    rawMatch("EUW1_new", "player"),
		},
	}
	publisher := memorypublisher.New()
	c := newTestCrawler(st, api, publisher)

	require.NoError(t, c.runOnce(context.Background()))
	require.NotContains(t, st.matches, "EUW1_broken")
	require.Contains(t, st.matches, "EUW1_new")
	require.Zero(t, st.summonerUpserts("afk-0"))
	require.Len(t, publisher.Messages(), 1)
}

func TestRunOnceWithoutPublisherOrArchive(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.claims = []match.SummonerRecord{{PUUID: "puuid-seed"}}

	api := &fakeAPI{
		idsByPUUID: map[string][]string{
			"puuid-seed": {"EUW1_new"},
		},
		matches: map[string]*riot.Match{
			"EUW1_new": rawMatch("EUW1_new", "player"),
		},
	}

	// Disabled publishing and archiving wire through as nil ports; the
	// loop must ingest without either, retaining nothing in process.
	metrics.Init()
	c := New(st, api, nil, nil, fixedClock{now: time.Unix(1700005000, 0)}, Config{
		Window:     7 * 24 * time.Hour,
		MatchCount: 100,
		InstanceID: "test-instance",
	}, zap.NewNop())

	require.NoError(t, c.runOnce(context.Background()))
	require.Contains(t, st.matches, "EUW1_new")
	require.Equal(t, 1, st.summonerUpserts("player-0"))
}

func TestRunOnceEmptyFrontier(t *testing.T) {
	t.Parallel()

	c := newTestCrawler(newFakeStore(), &fakeAPI{}, memorypublisher.New())

	err := c.runOnce(context.Background())
	require.ErrorIs(t, err, store.ErrNoEligibleSummoner)
}

func TestRunOnceListErrorIsFatal(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.claims = []match.SummonerRecord{{PUUID: "puuid-seed"}}
	api := &fakeAPI{listErr: &riot.APIError{Status: 503, Body: "unavailable"}}
	c := newTestCrawler(st, api, memorypublisher.New())

	err := c.runOnce(context.Background())
	var apiErr *riot.APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestRunWaitsOutExhaustedFrontier(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	c := newTestCrawler(st, &fakeAPI{}, memorypublisher.New())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := c.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	st.mu.Lock()
	claims := st.claimCalls
	st.mu.Unlock()
	require.GreaterOrEqual(t, claims, 2)
}

func TestParticipantUpsertsSuppressedAcrossMatches(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.claims = []match.SummonerRecord{{PUUID: "puuid-seed"}}

	// Two fresh matches with identical rosters.
	api := &fakeAPI{
		idsByPUUID: map[string][]string{
			"puuid-seed": {"EUW1_a", "EUW1_b"},
		},
		matches: map[string]*riot.Match{
			"EUW1_a": rawMatch("EUW1_a", "player"),
			"EUW1_b": rawMatch("EUW1_b", "player"),
		},
	}
	c := newTestCrawler(st, api, memorypublisher.New())

	require.NoError(t, c.runOnce(context.Background()))
	require.Len(t, st.matches, 2)
	for i := 0; i < 10; i++ {
		require.Equal(t, 1, st.summonerUpserts(fmt.Sprintf("player-%d", i)))
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	metrics.Init()
	c := New(newFakeStore(), &fakeAPI{}, nil, nil, fixedClock{}, Config{}, nil)
	require.Equal(t, 100, c.cfg.MatchCount)
	require.Equal(t, 30*time.Second, c.cfg.PollInterval)
	require.NotEmpty(t, c.cfg.InstanceID)
	require.NotNil(t, c.logger)
}

func TestRunReturnsCanceledContext(t *testing.T) {
	t.Parallel()

	c := newTestCrawler(newFakeStore(), &fakeAPI{}, memorypublisher.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, c.Run(ctx), context.Canceled)
}
