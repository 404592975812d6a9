package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"moviechat/recommendservice/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	posterBaseURL   = "https://image.tmdb.org/t/p/w185"
	defaultLanguage = "en-US"
	redisCacheKey   = "moviechat:tmdb:"
)

type Client struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	redis    *redis.Client
	cacheTTL time.Duration
	limiter  *rate.Limiter
}

type Config struct {
	APIKey   string
	BaseURL  string
	Client   *http.Client
	Redis    *redis.Client
	CacheTTL time.Duration
	// RateLimit paces outgoing API calls; zero means the default 4 req/s.
	RateLimit rate.Limit
}

// Genre is one canonical genre name with its provider identifier.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Language is one spoken language supported by the catalog.
type Language struct {
	ISO639      string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name,omitempty"`
}

type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 7 * 24 * time.Hour
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 4
	}
	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     httpClient,
		redis:    cfg.Redis,
		cacheTTL: cacheTTL,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// MovieGenres fetches the movie genre list, serving from Redis when possible.
func (c *Client) MovieGenres(ctx context.Context) ([]Genre, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var cached []Genre
	if c.cacheGet(ctx, "genres", &cached) {
		return cached, nil
	}

	payload, err := c.get(ctx, "/genre/movie/list", url.Values{"language": {defaultLanguage}})
	if err != nil {
		return nil, err
	}

	var response genreListResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("decode genre list: %w", err)
	}

	c.cacheSet(ctx, "genres", response.Genres)
	return response.Genres, nil
}

// Languages fetches the supported language list, serving from Redis when possible.
func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	if !c.Enabled() {
		return nil, nil
	}

	var cached []Language
	if c.cacheGet(ctx, "languages", &cached) {
		return cached, nil
	}

	payload, err := c.get(ctx, "/configuration/languages", nil)
	if err != nil {
		return nil, err
	}

	var languages []Language
	if err := json.Unmarshal(payload, &languages); err != nil {
		return nil, fmt.Errorf("decode language list: %w", err)
	}

	// Entries without an english name cannot be matched by the extraction engine.
	out := make([]Language, 0, len(languages))
	for _, language := range languages {
		if strings.TrimSpace(language.EnglishName) == "" {
			continue
		}
		out = append(out, language)
	}

	c.cacheSet(ctx, "languages", out)
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	startedAt := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.TMDBRequestsTotal.WithLabelValues(path, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	metrics.TMDBRequestDuration.WithLabelValues(path).Observe(time.Since(startedAt).Seconds())

	if resp.StatusCode != http.StatusOK {
		metrics.TMDBRequestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tmdb HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	metrics.TMDBRequestsTotal.WithLabelValues(path, "ok").Inc()

	return io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
}

func (c *Client) cacheGet(ctx context.Context, key string, dest any) bool {
	if c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, redisCacheKey+key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *Client) cacheSet(ctx context.Context, key string, value any) {
	if c.redis == nil {
		return
	}
	if data, err := json.Marshal(value); err == nil {
		_ = c.redis.Set(ctx, redisCacheKey+key, data, c.cacheTTL).Err()
	}
}
