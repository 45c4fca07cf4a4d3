package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/crickarena/crickarena/internal/domain/match"
	"github.com/crickarena/crickarena/internal/domain/scoring"
	"github.com/crickarena/crickarena/internal/platform/cache"
	"github.com/crickarena/crickarena/internal/platform/logging"
)

// CricketData is the outbound cricket API surface the services depend on.
type CricketData interface {
	CurrentMatches(ctx context.Context) ([]match.Match, error)
	MatchInfo(ctx context.Context, matchID string) (match.Match, error)
	MatchSquad(ctx context.Context, matchID string) ([]match.Squad, error)
	MatchScorecard(ctx context.Context, matchID string) (scoring.Scorecard, error)
	SeriesList(ctx context.Context, search string) ([]match.Series, error)
	Players(ctx context.Context, search string, offset int) ([]match.SquadPlayer, error)
	PlayerInfo(ctx context.Context, playerID string) (match.PlayerProfile, error)
}

// HomeFeed is the landing-page payload: every current match bucketed by
// lifecycle, plus the running series.
type HomeFeed struct {
	Upcoming  []match.Match
	Live      []match.Match
	Completed []match.Match
	Series    []match.Series
}

// MatchDetail pairs a match with its squads.
type MatchDetail struct {
	Match  match.Match
	Squads []match.Squad
}

type MatchService struct {
	provider CricketData
	cache    *cache.Store
	cacheTTL time.Duration
	logger   *logging.Logger
}

func NewMatchService(provider CricketData, store *cache.Store, cacheTTL time.Duration, logger *logging.Logger) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &MatchService{provider: provider, cache: store, cacheTTL: cacheTTL, logger: logger}
}

// Home fetches matches and series concurrently and buckets the matches.
func (s *MatchService) Home(ctx context.Context) (HomeFeed, error) {
	ctx, span := startSpan(ctx, "usecase.MatchService.Home")
	defer span.End()

	var (
		matches []match.Match
		series  []match.Series
	)

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		var err error
		matches, err = s.currentMatches(ctx)
		return err
	})
	p.Go(func(ctx context.Context) error {
		list, err := s.seriesList(ctx)
		if err != nil {
			// The home page still works without the series rail.
			s.logger.WarnContext(ctx, "series list unavailable", "error", err)
			return nil
		}
		series = list
		return err
	})
	if err := p.Wait(); err != nil {
		return HomeFeed{}, err
	}

	feed := HomeFeed{Series: series}
	for _, m := range matches {
		switch match.Category(m) {
		case match.CategoryLive:
			feed.Live = append(feed.Live, m)
		case match.CategoryCompleted:
			feed.Completed = append(feed.Completed, m)
		default:
			feed.Upcoming = append(feed.Upcoming, m)
		}
	}
	match.SortForCategory(feed.Upcoming, match.CategoryUpcoming)
	match.SortForCategory(feed.Live, match.CategoryLive)
	match.SortForCategory(feed.Completed, match.CategoryCompleted)
	return feed, nil
}

// List returns current matches of one category. Live listings always hit the
// provider; cached data would lag the scores.
func (s *MatchService) List(ctx context.Context, category string) ([]match.Match, error) {
	ctx, span := startSpan(ctx, "usecase.MatchService.List")
	defer span.End()

	switch category {
	case match.CategoryUpcoming, match.CategoryLive, match.CategoryCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown match category %q", ErrInvalidInput, category)
	}

	var (
		matches []match.Match
		err     error
	)
	if category == match.CategoryLive {
		matches, err = s.provider.CurrentMatches(ctx)
	} else {
		matches, err = s.currentMatches(ctx)
	}
	if err != nil {
		return nil, err
	}

	filtered := matches[:0:0]
	for _, m := range matches {
		if match.Category(m) == category {
			filtered = append(filtered, m)
		}
	}
	match.SortForCategory(filtered, category)
	return filtered, nil
}

// Detail fetches match info and squads concurrently. A missing squad is not
// fatal; upcoming matches often have none published yet.
func (s *MatchService) Detail(ctx context.Context, matchRef string) (MatchDetail, error) {
	ctx, span := startSpan(ctx, "usecase.MatchService.Detail")
	defer span.End()

	if matchRef == "" {
		return MatchDetail{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	var detail MatchDetail

	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		m, err := s.matchInfo(ctx, matchRef)
		if err != nil {
			return err
		}
		detail.Match = m
		return nil
	})
	p.Go(func(ctx context.Context) error {
		squads, err := s.matchSquad(ctx, matchRef)
		if err != nil {
			s.logger.DebugContext(ctx, "match squad unavailable", "match_ref", matchRef, "error", err)
			return nil
		}
		detail.Squads = squads
		return nil
	})
	if err := p.Wait(); err != nil {
		return MatchDetail{}, err
	}
	return detail, nil
}

// Current exposes the cached current-matches list for the sync job.
func (s *MatchService) Current(ctx context.Context) ([]match.Match, error) {
	return s.currentMatches(ctx)
}

func (s *MatchService) Info(ctx context.Context, matchRef string) (match.Match, error) {
	return s.matchInfo(ctx, matchRef)
}

func (s *MatchService) Squads(ctx context.Context, matchRef string) ([]match.Squad, error) {
	return s.matchSquad(ctx, matchRef)
}

func (s *MatchService) Scorecard(ctx context.Context, matchRef string) (scoring.Scorecard, error) {
	return s.provider.MatchScorecard(ctx, matchRef)
}

func (s *MatchService) Series(ctx context.Context, search string) ([]match.Series, error) {
	ctx, span := startSpan(ctx, "usecase.MatchService.Series")
	defer span.End()

	if search != "" {
		return s.provider.SeriesList(ctx, search)
	}
	return s.seriesList(ctx)
}

func (s *MatchService) Players(ctx context.Context, search string, offset int) ([]match.SquadPlayer, error) {
	ctx, span := startSpan(ctx, "usecase.MatchService.Players")
	defer span.End()

	if offset < 0 {
		offset = 0
	}
	return s.provider.Players(ctx, search, offset)
}

func (s *MatchService) Player(ctx context.Context, playerID string) (match.PlayerProfile, error) {
	ctx, span := startSpan(ctx, "usecase.MatchService.Player")
	defer span.End()

	if playerID == "" {
		return match.PlayerProfile{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	return s.provider.PlayerInfo(ctx, playerID)
}

func (s *MatchService) currentMatches(ctx context.Context) ([]match.Match, error) {
	return cachedLoad(ctx, s.cache, "matches:current", s.cacheTTL, s.provider.CurrentMatches)
}

func (s *MatchService) matchInfo(ctx context.Context, matchRef string) (match.Match, error) {
	return cachedLoad(ctx, s.cache, "matches:info:"+matchRef, s.cacheTTL, func(ctx context.Context) (match.Match, error) {
		return s.provider.MatchInfo(ctx, matchRef)
	})
}

func (s *MatchService) matchSquad(ctx context.Context, matchRef string) ([]match.Squad, error) {
	// Squads change rarely; keep them ten times longer than live data.
	return cachedLoad(ctx, s.cache, "matches:squad:"+matchRef, 10*s.cacheTTL, func(ctx context.Context) ([]match.Squad, error) {
		return s.provider.MatchSquad(ctx, matchRef)
	})
}

func (s *MatchService) seriesList(ctx context.Context) ([]match.Series, error) {
	return cachedLoad(ctx, s.cache, "matches:series", 10*s.cacheTTL, func(ctx context.Context) ([]match.Series, error) {
		return s.provider.SeriesList(ctx, "")
	})
}

var errCacheMiss = errors.New("cache type mismatch")

// cachedLoad runs fn through the store's single-flight loader, tolerating a
// nil store (caching disabled).
func cachedLoad[T any](ctx context.Context, store *cache.Store, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if store == nil {
		return fn(ctx)
	}
	value, err := store.GetOrLoad(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, errCacheMiss
	}
	return typed, nil
}
