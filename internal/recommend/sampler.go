package recommend

import (
	"math/rand/v2"
	"sort"
	"strings"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/providers/tmdb"
)

// dedupeByID drops repeated catalog entries, keeping the first occurrence so
// page order is preserved.
func dedupeByID(movies []tmdb.Movie) []tmdb.Movie {
	seen := make(map[int]struct{}, len(movies))
	out := make([]tmdb.Movie, 0, len(movies))
	for _, movie := range movies {
		if _, exists := seen[movie.ID]; exists {
			continue
		}
		seen[movie.ID] = struct{}{}
		out = append(out, movie)
	}
	return out
}

// sampleMovies picks up to size entries uniformly without replacement.
func sampleMovies(movies []tmdb.Movie, size int, rng *rand.Rand) []tmdb.Movie {
	if size > len(movies) {
		size = len(movies)
	}
	if size <= 0 {
		return nil
	}
	shuffled := append([]tmdb.Movie(nil), movies...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:size]
}

// toRecommendation renders one sampled movie for the user-facing payload,
// resolving genre identifiers back to display names.
func toRecommendation(movie tmdb.Movie, vocab *vocabulary) domain.Recommendation {
	names := make([]string, 0, len(movie.GenreIDs))
	for _, id := range movie.GenreIDs {
		if name, ok := vocab.genreNames[id]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	genres := strings.Join(names, ", ")
	if genres == "" {
		genres = "Unknown Genre"
	}

	year := movie.ReleaseYear()
	if year == "" {
		year = "N/A"
	}
	overview := strings.TrimSpace(movie.Overview)
	if overview == "" {
		overview = "No overview available."
	}

	return domain.Recommendation{
		ID:       movie.ID,
		Name:     movie.Title,
		Year:     year,
		Rating:   formatRating(movie.VoteAverage),
		Genres:   genres,
		Poster:   movie.PosterPath,
		Overview: overview,
	}
}
