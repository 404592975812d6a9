package recommend

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/metrics"
	"moviechat/recommendservice/internal/nlquery"
	"moviechat/recommendservice/internal/providers/tmdb"
)

const (
	defaultMaxPages        = 5
	defaultSampleSize      = 5
	defaultRefreshInterval = 24 * time.Hour
	maxConcurrentPages     = 3

	noteUnavailable  = "Sorry, the movie recommendation system is currently unavailable. Please check API key setup."
	noteFetchTrouble = "Sorry, I'm having trouble fetching movie data right now."
	noteNoMatches    = "Sorry, I couldn't find any movies matching all your criteria."
)

// Catalog is the slice of the TMDb client the service depends on.
type Catalog interface {
	Enabled() bool
	MovieGenres(ctx context.Context) ([]tmdb.Genre, error)
	Languages(ctx context.Context) ([]tmdb.Language, error)
	DiscoverMovies(ctx context.Context, params tmdb.DiscoverParams, page int) (tmdb.DiscoverPage, error)
}

// Service turns free-text movie requests into a sampled set of catalog
// recommendations: extract filters, build a discover query, fetch a page pool,
// dedupe, sample, annotate.
type Service struct {
	catalog       Catalog
	logger        *slog.Logger
	vocab         atomic.Pointer[vocabulary]
	cache         *responseCache
	cacheDisabled bool
	cacheTTL      time.Duration
	redisBackend  *RedisCacheBackend
	maxPages      int
	sampleSize    int
	refreshEvery  time.Duration
	retry         retryConfig
	refreshRun    atomic.Bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

type ServiceOption func(*Service)

func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMaxPages(pages int) ServiceOption {
	return func(s *Service) {
		if pages > 0 {
			s.maxPages = pages
		}
	}
}

func WithSampleSize(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.sampleSize = size
		}
	}
}

func WithRefreshInterval(interval time.Duration) ServiceOption {
	return func(s *Service) {
		if interval > 0 {
			s.refreshEvery = interval
		}
	}
}

func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func WithCacheDisabled(disabled bool) ServiceOption {
	return func(s *Service) {
		s.cacheDisabled = disabled
	}
}

func WithRedisCache(backend *RedisCacheBackend) ServiceOption {
	return func(s *Service) {
		s.redisBackend = backend
	}
}

// WithRandSource fixes the sampling source, used by tests for determinism.
func WithRandSource(source rand.Source) ServiceOption {
	return func(s *Service) {
		if source != nil {
			s.rng = rand.New(source)
		}
	}
}

func NewService(catalog Catalog, opts ...ServiceOption) *Service {
	svc := &Service{
		catalog:      catalog,
		logger:       slog.Default(),
		maxPages:     defaultMaxPages,
		sampleSize:   defaultSampleSize,
		refreshEvery: defaultRefreshInterval,
		retry:        defaultRetryConfig(),
		rng: rand.New(rand.NewPCG(
			uint64(time.Now().UnixNano()),
			uint64(time.Now().UnixNano())>>1,
		)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	svc.cache = newResponseCache(svc.cacheTTL, svc.redisBackend)
	return svc
}

// Enabled reports whether the service can reach a configured catalog.
func (s *Service) Enabled() bool {
	return s.catalog != nil && s.catalog.Enabled()
}

// StartBackground launches the periodic vocabulary refresh loop.
func (s *Service) StartBackground(ctx context.Context) {
	if s.refreshRun.CompareAndSwap(false, true) {
		go s.runRefresher(ctx)
	}
}

func (s *Service) runRefresher(ctx context.Context) {
	ticker := time.NewTicker(s.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			if err := s.Refresh(refreshCtx); err != nil {
				s.logger.Warn("vocabulary refresh failed", slog.String("error", err.Error()))
			}
			cancel()
		}
	}
}

// ExtractFilters runs the extraction engine against the current vocabulary
// snapshot. Exposed for the filter inspection endpoint.
func (s *Service) ExtractFilters(text string) domain.FilterSet {
	normalized := strings.ToLower(strings.TrimSpace(text))
	filters := nlquery.Extract(normalized, s.currentVocabulary().snapshot)
	recordFilterMetrics(filters)
	return filters
}

// Recommend answers one free-text request. It never fails on user input: when
// the catalog is unreachable or nothing matches, the response carries an
// explanatory note and an empty recommendation list. The returned error is
// reserved for context cancellation.
func (s *Service) Recommend(ctx context.Context, text string) (domain.RecommendResponse, error) {
	if !s.Enabled() {
		return domain.RecommendResponse{
			Recommendations: []domain.Recommendation{},
			Note:            noteUnavailable,
		}, nil
	}

	normalized := strings.ToLower(strings.TrimSpace(text))
	startedAt := time.Now()

	if !s.cacheDisabled {
		if cached, ok := s.cache.get(ctx, normalized); ok {
			return cached, nil
		}
	}

	vocab := s.currentVocabulary()
	filters := nlquery.Extract(normalized, vocab.snapshot)
	recordFilterMetrics(filters)

	params, unrecognized := buildDiscoverParams(filters, vocab)
	if len(unrecognized) > 0 {
		// Vocabulary drifted between extraction and query building; tell the
		// user what is actually available instead of querying with a hole.
		return domain.RecommendResponse{
			Recommendations: []domain.Recommendation{},
			Note: "Sorry, I couldn't recognize all genres (" + strings.Join(unrecognized, ", ") +
				"). Available genres include: " + strings.Join(headOf(vocab.genreList, 10), ", ") + "...",
		}, nil
	}
	if filters.Language != "" && params.OriginalLanguage == "" {
		s.logger.Warn("language not resolvable, ignoring filter", slog.String("language", filters.Language))
	}

	movies, err := s.fetchMoviePool(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return domain.RecommendResponse{}, ctx.Err()
		}
		s.logger.Warn("catalog fetch failed",
			slog.String("text", truncate(normalized, 80)),
			slog.String("error", err.Error()),
		)
		return domain.RecommendResponse{
			Recommendations: []domain.Recommendation{},
			Note:            noteFetchTrouble,
		}, nil
	}

	movies = dedupeByID(movies)
	if len(movies) == 0 {
		return domain.RecommendResponse{
			Recommendations: []domain.Recommendation{},
			Note:            noteNoMatches,
		}, nil
	}

	sample := s.sample(movies)
	recommendations := make([]domain.Recommendation, 0, len(sample))
	for _, movie := range sample {
		recommendations = append(recommendations, toRecommendation(movie, vocab))
	}

	response := domain.RecommendResponse{
		Recommendations: recommendations,
		Note:            buildNote(filters, sample),
	}
	if !s.cacheDisabled {
		s.cache.set(ctx, normalized, response)
	}

	metrics.RecommendDuration.Observe(time.Since(startedAt).Seconds())
	metrics.RecommendationsReturned.Observe(float64(len(recommendations)))
	s.logger.Info("recommendation served",
		slog.String("text", truncate(normalized, 80)),
		slog.Int("poolSize", len(movies)),
		slog.Int("returned", len(recommendations)),
		slog.Int64("elapsedMs", time.Since(startedAt).Milliseconds()),
	)
	return response, nil
}

// fetchMoviePool collects up to maxPages discover pages. The first page is
// fetched alone to learn the total page count; the remainder fan out with
// bounded concurrency. Failures past page one degrade to partial data.
func (s *Service) fetchMoviePool(ctx context.Context, params tmdb.DiscoverParams) ([]tmdb.Movie, error) {
	var first tmdb.DiscoverPage
	err := retryWithBackoff(ctx, s.retry, func() error {
		var fetchErr error
		first, fetchErr = s.catalog.DiscoverMovies(ctx, params, 1)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}

	totalPages := first.TotalPages
	if totalPages > s.maxPages {
		totalPages = s.maxPages
	}
	if totalPages <= 1 || len(first.Results) == 0 {
		return first.Results, nil
	}

	pages := make([][]tmdb.Movie, totalPages+1)
	pages[1] = first.Results

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentPages)
	for page := 2; page <= totalPages; page++ {
		group.Go(func() error {
			var result tmdb.DiscoverPage
			fetchErr := retryWithBackoff(groupCtx, s.retry, func() error {
				var innerErr error
				result, innerErr = s.catalog.DiscoverMovies(groupCtx, params, page)
				return innerErr
			})
			if fetchErr != nil {
				// Partial data beats no data; page one already succeeded.
				s.logger.Warn("discover page failed",
					slog.Int("page", page),
					slog.String("error", fetchErr.Error()),
				)
				return nil
			}
			pages[page] = result.Results
			return nil
		})
	}
	_ = group.Wait()

	combined := make([]tmdb.Movie, 0, len(first.Results)*totalPages)
	for _, pageResults := range pages[1:] {
		combined = append(combined, pageResults...)
	}
	return combined, nil
}

func (s *Service) sample(movies []tmdb.Movie) []tmdb.Movie {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return sampleMovies(movies, s.sampleSize, s.rng)
}

func recordFilterMetrics(filters domain.FilterSet) {
	record := func(field string, set bool) {
		if set {
			metrics.FilterFieldsExtracted.WithLabelValues(field).Inc()
		}
	}
	record("genres", len(filters.IncludedGenres) > 0)
	record("excludedGenres", len(filters.ExcludedGenres) > 0)
	record("yearAfter", filters.YearAfter != nil)
	record("yearBefore", filters.YearBefore != nil)
	record("minRuntime", filters.MinRuntimeMinutes != nil)
	record("maxRuntime", filters.MaxRuntimeMinutes != nil)
	record("minRating", filters.MinRating != nil)
	record("language", filters.Language != "")
	record("minVotes", filters.MinVoteCount != nil)
}

func headOf(items []string, limit int) []string {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}

func truncate(value string, limit int) string {
	if limit <= 0 || len(value) <= limit {
		return value
	}
	if limit <= 3 {
		return value[:limit]
	}
	return value[:limit-3] + "..."
}
