package recommend

import (
	"fmt"
	"strings"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/providers/tmdb"
)

// buildNote renders the trailing note describing what was applied. When no
// filter was extracted at all, the note falls back to describing the lowest
// rating present in the sample, so the user still learns something about the
// quality bar of what they got.
func buildNote(filters domain.FilterSet, sample []tmdb.Movie) string {
	parts := make([]string, 0, 9)

	if len(filters.IncludedGenres) > 0 {
		parts = append(parts, "Genres: "+strings.Join(filters.IncludedGenres, ", "))
	}
	if filters.YearAfter != nil {
		parts = append(parts, fmt.Sprintf("After %d", *filters.YearAfter))
	}
	if filters.YearBefore != nil {
		parts = append(parts, fmt.Sprintf("Before %d", *filters.YearBefore))
	}
	if filters.MinRuntimeMinutes != nil {
		parts = append(parts, fmt.Sprintf("Min Runtime: %d min", *filters.MinRuntimeMinutes))
	}
	if filters.MaxRuntimeMinutes != nil {
		parts = append(parts, fmt.Sprintf("Max Runtime: %d min", *filters.MaxRuntimeMinutes))
	}
	if filters.MinRating != nil {
		parts = append(parts, fmt.Sprintf("Rating >= %.1f", *filters.MinRating))
	}
	if filters.Language != "" {
		parts = append(parts, "Language: "+filters.Language)
	}
	if filters.MinVoteCount != nil {
		parts = append(parts, fmt.Sprintf("Votes >= %d", *filters.MinVoteCount))
	}
	if len(filters.ExcludedGenres) > 0 {
		parts = append(parts, "Excluding Genres: "+strings.Join(filters.ExcludedGenres, ", "))
	}

	if len(parts) > 0 {
		return " (Filters applied: " + strings.Join(parts, ", ") + ")"
	}
	if len(sample) == 0 {
		return " (No movies found matching criteria)"
	}
	if lowest, ok := lowestRating(sample); ok {
		return fmt.Sprintf(" (Showing recommendations rated %.1f or higher)", lowest)
	}
	return " (Showing matching movies)"
}

func lowestRating(sample []tmdb.Movie) (float64, bool) {
	found := false
	lowest := 0.0
	for _, movie := range sample {
		if movie.VoteAverage <= 0 {
			continue
		}
		if !found || movie.VoteAverage < lowest {
			lowest = movie.VoteAverage
			found = true
		}
	}
	return lowest, found
}

func formatRating(value float64) string {
	if value <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", value)
}
