package recommend

import (
	"testing"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/providers/tmdb"
)

func TestBuildNoteFilterSummaryOrder(t *testing.T) {
	filters := domain.FilterSet{
		IncludedGenres:    []string{"Action", "Comedy"},
		ExcludedGenres:    []string{"Horror"},
		YearAfter:         intPtr(2000),
		YearBefore:        intPtr(2015),
		MinRuntimeMinutes: intPtr(90),
		MaxRuntimeMinutes: intPtr(150),
		MinRating:         floatPtr(7.0),
		MinVoteCount:      intPtr(500),
		Language:          "French",
	}

	got := buildNote(filters, nil)
	want := " (Filters applied: Genres: Action, Comedy, After 2000, Before 2015," +
		" Min Runtime: 90 min, Max Runtime: 150 min, Rating >= 7.0, Language: French," +
		" Votes >= 500, Excluding Genres: Horror)"
	if got != want {
		t.Fatalf("buildNote = %q, want %q", got, want)
	}
}

func TestBuildNoteNoFiltersEmptySample(t *testing.T) {
	got := buildNote(domain.FilterSet{}, nil)
	if got != " (No movies found matching criteria)" {
		t.Fatalf("unexpected note %q", got)
	}
}

func TestBuildNoteNoFiltersDescribesLowestRating(t *testing.T) {
	sample := []tmdb.Movie{
		{ID: 1, VoteAverage: 8.4},
		{ID: 2, VoteAverage: 6.9},
		{ID: 3, VoteAverage: 7.7},
	}
	got := buildNote(domain.FilterSet{}, sample)
	if got != " (Showing recommendations rated 6.9 or higher)" {
		t.Fatalf("unexpected note %q", got)
	}
}

func TestBuildNoteNoFiltersUnratedSample(t *testing.T) {
	sample := []tmdb.Movie{{ID: 1}, {ID: 2}}
	got := buildNote(domain.FilterSet{}, sample)
	if got != " (Showing matching movies)" {
		t.Fatalf("unexpected note %q", got)
	}
}

func TestFormatRating(t *testing.T) {
	if got := formatRating(7.25); got != "7.2" {
		t.Fatalf("formatRating(7.25) = %q", got)
	}
	if got := formatRating(0); got != "N/A" {
		t.Fatalf("formatRating(0) = %q", got)
	}
}
