package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DiscoverParams maps a structured filter set onto the /discover/movie query
// surface. Zero values mean "no constraint" and emit no parameter.
type DiscoverParams struct {
	GenreIDs         []int
	ExcludedGenreIDs []int
	ReleasedAfter    string // YYYY-MM-DD
	ReleasedBefore   string // YYYY-MM-DD
	MinRating        float64
	MinRuntime       int
	MaxRuntime       int
	MinVotes         int
	OriginalLanguage string // ISO 639-1 code
}

// Movie is one /discover/movie result entry.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path,omitempty"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	ReleaseDate string  `json:"release_date,omitempty"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
}

// ReleaseYear returns the four-digit release year, or empty when unknown.
func (m Movie) ReleaseYear() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}

// PosterURL returns the absolute poster image URL, or empty when none exists.
func (m Movie) PosterURL() string {
	if m.PosterPath == "" {
		return ""
	}
	return posterBaseURL + m.PosterPath
}

// DiscoverPage is one page of catalog matches.
type DiscoverPage struct {
	Page       int     `json:"page"`
	Results    []Movie `json:"results"`
	TotalPages int     `json:"total_pages"`
}

// DiscoverMovies queries one page of /discover/movie. Results are sorted by
// vote average server-side; a vote-count floor of 50 applies unless the params
// carry an explicit one so that obscure entries do not dominate the top ranks.
func (c *Client) DiscoverMovies(ctx context.Context, params DiscoverParams, page int) (DiscoverPage, error) {
	if !c.Enabled() {
		return DiscoverPage{}, fmt.Errorf("tmdb api key is not configured")
	}
	if page <= 0 {
		page = 1
	}

	values := url.Values{
		"language":      {defaultLanguage},
		"sort_by":       {"vote_average.desc"},
		"include_adult": {"false"},
		"page":          {strconv.Itoa(page)},
	}

	minVotes := params.MinVotes
	if minVotes <= 0 {
		minVotes = 50
	}
	values.Set("vote_count.gte", strconv.Itoa(minVotes))

	if len(params.GenreIDs) > 0 {
		// Comma joins genres with AND semantics.
		values.Set("with_genres", joinIDs(params.GenreIDs, ","))
	}
	if len(params.ExcludedGenreIDs) > 0 {
		// Pipe joins exclusions with OR semantics.
		values.Set("without_genres", joinIDs(params.ExcludedGenreIDs, "|"))
	}
	if params.ReleasedAfter != "" {
		values.Set("primary_release_date.gte", params.ReleasedAfter)
	}
	if params.ReleasedBefore != "" {
		values.Set("primary_release_date.lte", params.ReleasedBefore)
	}
	if params.MinRating > 0 {
		values.Set("vote_average.gte", strconv.FormatFloat(params.MinRating, 'f', -1, 64))
	}
	if params.MinRuntime > 0 {
		values.Set("with_runtime.gte", strconv.Itoa(params.MinRuntime))
	}
	if params.MaxRuntime > 0 {
		values.Set("with_runtime.lte", strconv.Itoa(params.MaxRuntime))
	}
	if params.OriginalLanguage != "" {
		values.Set("with_original_language", params.OriginalLanguage)
	}

	payload, err := c.get(ctx, "/discover/movie", values)
	if err != nil {
		return DiscoverPage{}, err
	}

	var result DiscoverPage
	if err := json.Unmarshal(payload, &result); err != nil {
		return DiscoverPage{}, fmt.Errorf("decode discover page: %w", err)
	}
	return result, nil
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, sep)
}
