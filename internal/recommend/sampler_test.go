package recommend

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"moviechat/recommendservice/internal/providers/tmdb"
)

func TestDedupeByIDKeepsFirstOccurrence(t *testing.T) {
	movies := []tmdb.Movie{
		{ID: 1, Title: "First"},
		{ID: 2, Title: "Second"},
		{ID: 1, Title: "First Copy"},
		{ID: 3, Title: "Third"},
		{ID: 2, Title: "Second Copy"},
	}

	got := dedupeByID(movies)
	if len(got) != 3 {
		t.Fatalf("expected 3 movies, got %d", len(got))
	}
	if got[0].Title != "First" || got[1].Title != "Second" || got[2].Title != "Third" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestSampleMoviesBounds(t *testing.T) {
	pool := []tmdb.Movie{{ID: 1}, {ID: 2}, {ID: 3}}
	rng := rand.New(rand.NewPCG(1, 2))

	if got := sampleMovies(pool, 5, rng); len(got) != 3 {
		t.Fatalf("sample larger than pool should return whole pool, got %d", len(got))
	}
	if got := sampleMovies(pool, 2, rng); len(got) != 2 {
		t.Fatalf("expected 2 sampled movies, got %d", len(got))
	}
	if got := sampleMovies(nil, 2, rng); got != nil {
		t.Fatalf("expected nil for empty pool, got %v", got)
	}
}

func TestSampleMoviesWithoutReplacement(t *testing.T) {
	pool := make([]tmdb.Movie, 0, 10)
	for i := 1; i <= 10; i++ {
		pool = append(pool, tmdb.Movie{ID: i})
	}
	rng := rand.New(rand.NewPCG(7, 11))

	got := sampleMovies(pool, 5, rng)
	seen := map[int]bool{}
	for _, movie := range got {
		if movie.ID < 1 || movie.ID > 10 {
			t.Fatalf("sampled movie outside pool: %d", movie.ID)
		}
		if seen[movie.ID] {
			t.Fatalf("movie %d sampled twice", movie.ID)
		}
		seen[movie.ID] = true
	}
}

func TestSampleMoviesDeterministicWithSeed(t *testing.T) {
	pool := make([]tmdb.Movie, 0, 10)
	for i := 1; i <= 10; i++ {
		pool = append(pool, tmdb.Movie{ID: i})
	}

	first := sampleMovies(pool, 4, rand.New(rand.NewPCG(3, 5)))
	second := sampleMovies(pool, 4, rand.New(rand.NewPCG(3, 5)))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different samples: %v vs %v", first, second)
	}
}

func TestSampleMoviesDoesNotMutatePool(t *testing.T) {
	pool := []tmdb.Movie{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	want := append([]tmdb.Movie(nil), pool...)

	sampleMovies(pool, 2, rand.New(rand.NewPCG(9, 9)))
	if !reflect.DeepEqual(pool, want) {
		t.Fatalf("pool mutated: %v", pool)
	}
}

func TestToRecommendationResolvesGenresAndFallbacks(t *testing.T) {
	vocab := testVocabulary()

	movie := tmdb.Movie{
		ID:          42,
		Title:       "Night Run",
		Overview:    "A courier outruns the mob.",
		PosterPath:  "/p.jpg",
		VoteAverage: 7.8,
		ReleaseDate: "2014-05-02",
		GenreIDs:    []int{35, 28, 999},
	}
	rec := toRecommendation(movie, vocab)
	if rec.Genres != "Action, Comedy" {
		t.Fatalf("unexpected genres %q", rec.Genres)
	}
	if rec.Year != "2014" {
		t.Fatalf("unexpected year %q", rec.Year)
	}
	if rec.Rating != "7.8" {
		t.Fatalf("unexpected rating %q", rec.Rating)
	}

	bare := toRecommendation(tmdb.Movie{ID: 7, Title: "Untitled"}, vocab)
	if bare.Genres != "Unknown Genre" {
		t.Fatalf("unexpected genre fallback %q", bare.Genres)
	}
	if bare.Year != "N/A" {
		t.Fatalf("unexpected year fallback %q", bare.Year)
	}
	if bare.Rating != "N/A" {
		t.Fatalf("unexpected rating fallback %q", bare.Rating)
	}
	if bare.Overview != "No overview available." {
		t.Fatalf("unexpected overview fallback %q", bare.Overview)
	}
}
