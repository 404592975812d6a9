package domain

// FilterSet is the structured output of the natural-language extraction engine,
// consumed by the catalog query builder. Optional numeric fields are nil when the
// request text carried no matching phrase; slices are nil or empty when no genre
// constraint was found.
type FilterSet struct {
	// IncludedGenres holds canonical genre display names in the order they were
	// first matched in the text, without duplicates.
	IncludedGenres []string `json:"includedGenres,omitempty"`
	// ExcludedGenres holds canonical genre display names matched after an
	// exclusion keyword. Duplicates across exclusion phrases are kept, and a name
	// may appear in both lists when the text is contradictory.
	ExcludedGenres []string `json:"excludedGenres,omitempty"`

	YearAfter  *int `json:"yearAfter,omitempty"`
	YearBefore *int `json:"yearBefore,omitempty"`

	MinRuntimeMinutes *int `json:"minRuntimeMinutes,omitempty"`
	MaxRuntimeMinutes *int `json:"maxRuntimeMinutes,omitempty"`

	// MinRating is set either by an explicit rating phrase or by the quality
	// heuristic (a quality adjective or any included genre implies the default
	// threshold).
	MinRating *float64 `json:"minRating,omitempty"`

	// Language is a canonical language display name resolved against the
	// vocabulary, empty when the text mentioned none.
	Language string `json:"language,omitempty"`

	MinVoteCount *int `json:"minVoteCount,omitempty"`
}

// Empty reports whether no pass produced a value.
func (f FilterSet) Empty() bool {
	return len(f.IncludedGenres) == 0 &&
		len(f.ExcludedGenres) == 0 &&
		f.YearAfter == nil &&
		f.YearBefore == nil &&
		f.MinRuntimeMinutes == nil &&
		f.MaxRuntimeMinutes == nil &&
		f.MinRating == nil &&
		f.Language == "" &&
		f.MinVoteCount == nil
}

// Recommendation is one movie entry in a user-facing response.
type Recommendation struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Year     string `json:"year"`
	Rating   string `json:"rating"`
	Genres   string `json:"genres"`
	Poster   string `json:"poster_path,omitempty"`
	Overview string `json:"overview"`
}

// RecommendResponse is the payload handed to the HTTP layer: a small randomized
// sample of catalog matches plus a human-readable note describing the applied
// filters (or why nothing could be returned).
type RecommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
	Note            string           `json:"note"`
}

// VocabularyListing exposes the currently known canonical names, for the
// vocabulary endpoint and for "available genres" notes.
type VocabularyListing struct {
	Genres    []string `json:"genres"`
	Languages []string `json:"languages"`
}
