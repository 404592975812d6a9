package nlquery

import (
	"regexp"
	"sort"
	"strings"
)

// Vocabulary is an immutable snapshot of the genre and language names known at
// extraction time. Candidates are pre-sorted by descending name length so that a
// short name ("war") can never steal a match from a longer compound name
// ("war drama"), and every word-boundary pattern is compiled once per snapshot
// rather than on every call. Refreshing the vocabulary means building a new
// snapshot and publishing it; an existing snapshot is never mutated.
type Vocabulary struct {
	genres    []genreCandidate
	languages []languageCandidate
}

type genreCandidate struct {
	name  string
	match *regexp.Regexp
	erase *regexp.Regexp
}

type languageCandidate struct {
	name  string
	match *regexp.Regexp
}

// NewVocabulary builds a snapshot from canonical display names. Names are
// deduplicated case-insensitively; blank entries are dropped. The result is safe
// for concurrent use.
func NewVocabulary(genreNames, languageNames []string) *Vocabulary {
	vocab := &Vocabulary{}

	for _, name := range sortCandidates(genreNames) {
		lowered := regexp.QuoteMeta(strings.ToLower(name))
		vocab.genres = append(vocab.genres, genreCandidate{
			name:  name,
			match: regexp.MustCompile(`\b` + lowered + `\b`),
			// Erasing also swallows one preceding connector word so that leftover
			// "and"/"or" fragments cannot interfere with nearby numeric phrases.
			erase: regexp.MustCompile(`(?:\b(?:and|or|,)\s+)?(?:\b` + lowered + `\b)`),
		})
	}

	for _, name := range sortCandidates(languageNames) {
		lowered := regexp.QuoteMeta(strings.ToLower(name))
		vocab.languages = append(vocab.languages, languageCandidate{
			name:  name,
			match: regexp.MustCompile(`\b(?:in|language)?\s*` + lowered + `\b`),
		})
	}

	return vocab
}

// GenreNames returns the genre candidates in matching order (longest first).
func (v *Vocabulary) GenreNames() []string {
	names := make([]string, 0, len(v.genres))
	for _, candidate := range v.genres {
		names = append(names, candidate.name)
	}
	return names
}

// LanguageNames returns the language candidates in matching order.
func (v *Vocabulary) LanguageNames() []string {
	names := make([]string, 0, len(v.languages))
	for _, candidate := range v.languages {
		names = append(names, candidate.name)
	}
	return names
}

// sortCandidates dedupes case-insensitively and orders by descending length,
// breaking ties alphabetically so candidate order never depends on map iteration.
func sortCandidates(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
