package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"moviechat/recommendservice/internal/domain"
	"moviechat/recommendservice/internal/metrics"
	"moviechat/recommendservice/internal/nlquery"
)

var displayCaser = cases.Title(language.English)

// vocabulary bundles one immutable refresh generation: the extraction snapshot
// plus the name-to-identifier maps the query builder needs. A refresh publishes
// a whole new value; readers never see a partially updated state.
type vocabulary struct {
	snapshot     *nlquery.Vocabulary
	genreIDs     map[string]int    // lower-cased canonical name -> catalog id
	genreNames   map[int]string    // catalog id -> canonical name
	languageISO  map[string]string // lower-cased english name -> ISO 639-1 code
	genreList    []string          // sorted display names
	languageList []string
}

func emptyVocabulary() *vocabulary {
	return &vocabulary{
		snapshot:    nlquery.NewVocabulary(nil, nil),
		genreIDs:    map[string]int{},
		genreNames:  map[int]string{},
		languageISO: map[string]string{},
	}
}

// Refresh fetches the current genre and language lists from the catalog and
// publishes a new vocabulary snapshot. The previous snapshot stays live for
// in-flight extractions.
func (s *Service) Refresh(ctx context.Context) error {
	if s.catalog == nil || !s.catalog.Enabled() {
		return fmt.Errorf("catalog is not configured")
	}

	genres, err := s.catalog.MovieGenres(ctx)
	if err != nil {
		return fmt.Errorf("fetch genres: %w", err)
	}
	languages, err := s.catalog.Languages(ctx)
	if err != nil {
		return fmt.Errorf("fetch languages: %w", err)
	}

	vocab := emptyVocabulary()
	genreNames := make([]string, 0, len(genres))
	for _, genre := range genres {
		name := strings.TrimSpace(genre.Name)
		if name == "" {
			continue
		}
		vocab.genreIDs[strings.ToLower(name)] = genre.ID
		vocab.genreNames[genre.ID] = name
		genreNames = append(genreNames, name)
	}

	languageNames := make([]string, 0, len(languages))
	for _, lang := range languages {
		name := strings.TrimSpace(lang.EnglishName)
		if name == "" || strings.TrimSpace(lang.ISO639) == "" {
			continue
		}
		vocab.languageISO[strings.ToLower(name)] = lang.ISO639
		languageNames = append(languageNames, name)
	}

	vocab.snapshot = nlquery.NewVocabulary(genreNames, languageNames)
	vocab.genreList = displayList(genreNames)
	vocab.languageList = displayList(languageNames)

	s.vocab.Store(vocab)
	metrics.VocabularySize.WithLabelValues("genres").Set(float64(len(genreNames)))
	metrics.VocabularySize.WithLabelValues("languages").Set(float64(len(languageNames)))
	return nil
}

// Listing returns the currently known canonical names for the vocabulary
// endpoint and for "available genres" notes.
func (s *Service) Listing() domain.VocabularyListing {
	vocab := s.currentVocabulary()
	return domain.VocabularyListing{
		Genres:    append([]string(nil), vocab.genreList...),
		Languages: append([]string(nil), vocab.languageList...),
	}
}

func (s *Service) currentVocabulary() *vocabulary {
	if vocab := s.vocab.Load(); vocab != nil {
		return vocab
	}
	return emptyVocabulary()
}

// displayList produces a sorted, consistently title-cased copy for display.
func displayList(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, displayCaser.String(strings.ToLower(name)))
	}
	sort.Strings(out)
	return out
}
