package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"questlog/internal/hltb"
	"questlog/internal/logging"
	"questlog/internal/metacache"
	"questlog/internal/opencritic"
	"questlog/internal/steam"
	"questlog/internal/textutil"
)

// Provenance values reported with a completion-time result.
const (
	SourceCache = "cache"
	SourceAPI   = "hltb"
	SourceHTML  = "html"
	SourceNone  = "none"
)

// matchThreshold is the similarity floor for accepting a candidate. The
// boundary is inclusive on the accept side.
const matchThreshold = 0.85

// CompletionTime is a resolved main-story duration with the provenance of
// whichever source produced it.
type CompletionTime struct {
	Hours  *float64 `json:"hours"`
	Source string   `json:"source"`
}

// CompletionSource is the scraped-search surface used for completion times.
type CompletionSource interface {
	Search(ctx context.Context, title string) ([]hltb.Candidate, error)
	SearchPage(ctx context.Context, title string) (hltb.PageResult, error)
}

// ScoreSource is the gateway surface used for critic scores.
type ScoreSource interface {
	Search(ctx context.Context, criteria string) ([]opencritic.Result, error)
	TopCriticScore(ctx context.Context, gameID int64) (*float64, error)
}

// PriceSource is the storefront surface used for price lookups.
type PriceSource interface {
	Price(ctx context.Context, appID uint32, region string) (*steam.Price, error)
}

// ScoreSourceFactory creates the critic-score client on demand. Deferring
// construction keeps the credential check behind the cache lookup: a fresh
// cache hit must never require a key.
type ScoreSourceFactory func() (ScoreSource, error)

// Config describes the resolver service dependencies.
type Config struct {
	Completion      CompletionSource
	ScoreFactory    ScoreSourceFactory
	Prices          PriceSource
	CompletionCache *metacache.Store
	ScoreCache      *metacache.Store
	Logger          *slog.Logger
}

// Service orchestrates metadata resolutions.
type Service struct {
	completion      CompletionSource
	scoreFactory    ScoreSourceFactory
	prices          PriceSource
	completionCache *metacache.Store
	scoreCache      *metacache.Store
	logger          *slog.Logger
	similarity      func(a, b string) float64
}

// New creates a Service from the supplied configuration. A nil ScoreFactory
// defaults to reading the gateway credential from the environment at call
// time.
func New(cfg Config) *Service {
	logger := logging.NewComponentLogger(cfg.Logger, "resolver")
	factory := cfg.ScoreFactory
	if factory == nil {
		factory = func() (ScoreSource, error) {
			return opencritic.NewFromEnv(nil, cfg.Logger)
		}
	}
	return &Service{
		completion:      cfg.Completion,
		scoreFactory:    factory,
		prices:          cfg.Prices,
		completionCache: cfg.CompletionCache,
		scoreCache:      cfg.ScoreCache,
		logger:          logger,
		similarity:      textutil.Similarity,
	}
}

// CompletionTime resolves the main-story duration for title. The chain is
// cache, scraped search endpoint, HTML fallback. A definitive outcome from
// any source (a value, or a confirmed absence) is persisted; pure soft
// failure of every source returns provenance "none" without a cache write.
func (s *Service) CompletionTime(ctx context.Context, title string) (CompletionTime, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return CompletionTime{Source: SourceNone}, nil
	}

	logger := s.requestLogger("completion_time")
	key := textutil.NormalizeTitle(trimmed)

	if entry, ok := s.completionCache.Lookup(key); ok {
		logger.Debug("cache hit",
			logging.String(logging.FieldCacheKey, key),
			logging.Bool("negative", entry.Value == nil))
		return CompletionTime{Hours: entry.Value, Source: SourceCache}, nil
	}

	candidates, err := s.completion.Search(ctx, trimmed)
	switch {
	case err == nil:
		if best, ok := s.selectBest(candidates, key); ok {
			hours := best.MainHours
			s.persist(s.completionCache, key, &hours, logger)
			logger.Info("resolved",
				logging.String(logging.FieldSource, SourceAPI),
				logging.Float64("hours", hours))
			return CompletionTime{Hours: &hours, Source: SourceAPI}, nil
		}
		// No qualifying candidate is a low-confidence outcome, not a
		// confirmed absence. Fall through to the HTML page.
		logger.Debug("no qualifying candidate from search endpoint",
			logging.Int("candidates", len(candidates)))
	case errors.Is(err, hltb.ErrNoData):
		// The upstream confirmed it holds nothing for this query.
		s.persist(s.completionCache, key, nil, logger)
		logger.Info("resolved",
			logging.String(logging.FieldSource, SourceAPI),
			logging.Bool("negative", true))
		return CompletionTime{Source: SourceAPI}, nil
	default:
		logger.Warn("search endpoint failed, falling back",
			logging.Error(err))
	}

	page, err := s.completion.SearchPage(ctx, trimmed)
	if err != nil {
		logger.Warn("html fallback failed", logging.Error(err))
		return CompletionTime{Source: SourceNone}, nil
	}

	if best, ok := s.selectBest(page.Candidates, key); ok {
		hours := best.MainHours
		s.persist(s.completionCache, key, &hours, logger)
		logger.Info("resolved",
			logging.String(logging.FieldSource, SourceHTML),
			logging.Float64("hours", hours))
		return CompletionTime{Hours: &hours, Source: SourceHTML}, nil
	}
	if page.RegexHours != nil {
		// Positional extraction has no candidate name to verify against;
		// it is accepted as-is.
		s.persist(s.completionCache, key, page.RegexHours, logger)
		logger.Info("resolved",
			logging.String(logging.FieldSource, SourceHTML),
			logging.Float64("hours", *page.RegexHours))
		return CompletionTime{Hours: page.RegexHours, Source: SourceHTML}, nil
	}

	// The page was fetched and parsed cleanly and held nothing: a
	// confirmed absence from the final source.
	s.persist(s.completionCache, key, nil, logger)
	logger.Info("resolved",
		logging.String(logging.FieldSource, SourceHTML),
		logging.Bool("negative", true))
	return CompletionTime{Source: SourceHTML}, nil
}

// CriticScore resolves the aggregated critic score for title. The cache is
// consulted before the credential check; a missing credential is the one
// hard error. Confirmed negatives (empty search, low-confidence match,
// absent score field) are cached; fetch failures are not.
func (s *Service) CriticScore(ctx context.Context, title string) (*float64, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, nil
	}

	logger := s.requestLogger("critic_score")
	key := textutil.NormalizeTitle(trimmed)
	if key == "" {
		key = trimmed
	}

	if entry, ok := s.scoreCache.Lookup(key); ok {
		logger.Debug("cache hit",
			logging.String(logging.FieldCacheKey, key),
			logging.Bool("negative", entry.Value == nil))
		return entry.Value, nil
	}

	client, err := s.scoreFactory()
	if err != nil {
		return nil, err
	}

	results, err := client.Search(ctx, trimmed)
	if err != nil {
		logger.Warn("score search failed", logging.Error(err))
		return nil, nil
	}

	bestID, ok := s.selectBestResult(results, key)
	if !ok {
		s.persist(s.scoreCache, key, nil, logger)
		logger.Info("no match above threshold",
			logging.Int("results", len(results)))
		return nil, nil
	}

	score, err := client.TopCriticScore(ctx, bestID)
	if err != nil {
		logger.Warn("score detail fetch failed", logging.Error(err))
		return nil, nil
	}

	s.persist(s.scoreCache, key, score, logger)
	if score != nil {
		logger.Info("resolved", logging.Float64("score", *score))
	}
	return score, nil
}

// Price resolves the current store price for appID in region.
func (s *Service) Price(ctx context.Context, appID uint32, region string) (*steam.Price, error) {
	return s.prices.Price(ctx, appID, region)
}

// ClearCompletionTimeCache deletes the completion-time cache document.
func (s *Service) ClearCompletionTimeCache() error {
	return s.completionCache.Clear()
}

// ClearCriticScoreCache deletes the critic-score cache document.
func (s *Service) ClearCriticScoreCache() error {
	return s.scoreCache.Clear()
}

// CompletionTimeEntries returns the raw completion-time cache contents.
func (s *Service) CompletionTimeEntries() map[string]metacache.Entry {
	return s.completionCache.List()
}

// CriticScoreEntries returns the raw critic-score cache contents.
func (s *Service) CriticScoreEntries() map[string]metacache.Entry {
	return s.scoreCache.List()
}

// selectBest scores every candidate with a positive duration against the
// normalized query and returns the best one when it clears the threshold.
// Ties keep the first-seen candidate.
func (s *Service) selectBest(candidates []hltb.Candidate, normalizedQuery string) (hltb.Candidate, bool) {
	var best hltb.Candidate
	bestScore := -1.0
	for _, candidate := range candidates {
		if candidate.MainHours <= 0 {
			continue
		}
		score := s.similarity(normalizedQuery, textutil.NormalizeTitle(candidate.Name))
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	if bestScore >= matchThreshold {
		return best, true
	}
	return hltb.Candidate{}, false
}

// selectBestResult applies the same policy to gateway search results.
func (s *Service) selectBestResult(results []opencritic.Result, normalizedQuery string) (int64, bool) {
	var bestID int64
	bestScore := -1.0
	for _, result := range results {
		score := s.similarity(normalizedQuery, textutil.NormalizeTitle(result.Name))
		if score > bestScore {
			bestID = result.ID
			bestScore = score
		}
	}
	if bestScore >= matchThreshold {
		return bestID, true
	}
	return 0, false
}

// persist writes an outcome to the cache. Cache failures never affect the
// resolution result.
func (s *Service) persist(store *metacache.Store, key string, value *float64, logger *slog.Logger) {
	if err := store.Put(key, value); err != nil {
		logger.Warn("failed to persist outcome",
			logging.String(logging.FieldCacheKey, key),
			logging.Error(err))
	}
}

func (s *Service) requestLogger(operation string) *slog.Logger {
	return s.logger.With(
		logging.String(logging.FieldRequestID, uuid.NewString()),
		logging.String(logging.FieldEventType, operation))
}
