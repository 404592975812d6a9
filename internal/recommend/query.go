package recommend

import (
	"fmt"
	"strings"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/providers/tmdb"
)

// buildDiscoverParams maps an extracted filter set onto catalog query
// parameters using the identifier maps of the current vocabulary generation.
//
// The extraction engine only emits names it validated against a snapshot, so an
// unrecognized genre here means the vocabulary drifted between extraction and
// query building. Such names are returned separately and surfaced as a
// user-facing note, never as an internal error. An unresolved language is
// dropped with a warning by the caller, matching the engine's contract.
func buildDiscoverParams(filters domain.FilterSet, vocab *vocabulary) (tmdb.DiscoverParams, []string) {
	var params tmdb.DiscoverParams
	var unrecognized []string

	for _, name := range filters.IncludedGenres {
		if id, ok := vocab.genreIDs[strings.ToLower(name)]; ok {
			params.GenreIDs = append(params.GenreIDs, id)
		} else {
			unrecognized = append(unrecognized, name)
		}
	}
	for _, name := range filters.ExcludedGenres {
		if id, ok := vocab.genreIDs[strings.ToLower(name)]; ok {
			params.ExcludedGenreIDs = append(params.ExcludedGenreIDs, id)
		}
	}

	if filters.YearAfter != nil {
		params.ReleasedAfter = fmt.Sprintf("%04d-01-01", *filters.YearAfter)
	}
	if filters.YearBefore != nil {
		params.ReleasedBefore = fmt.Sprintf("%04d-12-31", *filters.YearBefore)
	}
	if filters.MinRating != nil {
		params.MinRating = *filters.MinRating
	}
	if filters.MinRuntimeMinutes != nil {
		params.MinRuntime = *filters.MinRuntimeMinutes
	}
	if filters.MaxRuntimeMinutes != nil {
		params.MaxRuntime = *filters.MaxRuntimeMinutes
	}
	if filters.MinVoteCount != nil {
		params.MinVotes = *filters.MinVoteCount
	}
	if filters.Language != "" {
		if code, ok := vocab.languageISO[strings.ToLower(filters.Language)]; ok {
			params.OriginalLanguage = code
		}
	}

	return params, unrecognized
}
