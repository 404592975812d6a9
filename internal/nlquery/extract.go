package nlquery

import (
	"regexp"
	"strconv"
	"strings"

	"moviechat/recommendservice/internal/domain"
)

// DefaultMinRating is the implicit quality bar applied when the request carries a
// quality adjective or names at least one genre without an explicit rating phrase.
const DefaultMinRating = 7.0

var (
	yearAfterPattern  = regexp.MustCompile(`\b(?:after|since|from)\s+(\d{4})\b`)
	yearBeforePattern = regexp.MustCompile(`\b(?:before|until|upto)\s+(\d{4})\b`)

	minRuntimePattern = regexp.MustCompile(`\b(?:at least|min(?:imum)?|over)\s+(\d+)\s*(?:minutes|mins|min)?\b`)
	maxRuntimePattern = regexp.MustCompile(`\b(?:under|less than|max(?:imum)?|up to)\s+(\d+)\s*(?:minutes|mins|min)?\b`)

	ratingPattern  = regexp.MustCompile(`\b(?:rated|rating)\s+(?:above|over|at least|higher than)\s+([0-9.]+)`)
	qualityPattern = regexp.MustCompile(`\b(?:good|great|highly rated|highly-rated|top rated|top-rated|best|awesome|fantastic)\b`)

	minVotesPattern = regexp.MustCompile(`\b(?:at least|min(?:imum)?|over)\s+(\d+)\s*votes?\b`)

	exclusionPattern = regexp.MustCompile(`\b(?:but not|excluding|without)\s+(.+)`)
	exclusionSplit   = regexp.MustCompile(`,\s*| and `)
)

// workingBuffer is the mutable copy of the request text consumed by the genre
// inclusion pass. Keeping it a distinct type makes the original-vs-working
// distinction explicit: only the inclusion pass erases matched spans, every other
// pass reads the untouched original string.
type workingBuffer struct {
	text string
}

func newWorkingBuffer(text string) *workingBuffer {
	return &workingBuffer{text: text}
}

func (b *workingBuffer) matches(pattern *regexp.Regexp) bool {
	return pattern.MatchString(b.text)
}

// erase replaces every occurrence of pattern with a single space so the same
// span cannot later match a different (shorter) genre name.
func (b *workingBuffer) erase(pattern *regexp.Regexp) {
	b.text = strings.TrimSpace(pattern.ReplaceAllString(b.text, " "))
}

// Extract converts a lower-cased free-text movie request into a FilterSet using
// the given vocabulary snapshot. It is a pure function of its inputs and never
// fails: a pass that finds nothing simply leaves its field unset. Callers are
// responsible for lower-casing the input; matching is word-boundary based
// throughout.
//
// Pass order matters. The genre inclusion pass mutates a working copy of the
// text, while the exclusion pass must run against the original so that genre
// names appearing after "without"/"excluding"/"but not" are still visible. The
// rating pass observes the genre list produced by the first pass.
func Extract(text string, vocab *Vocabulary) domain.FilterSet {
	var out domain.FilterSet
	if vocab == nil {
		vocab = &Vocabulary{}
	}

	// Locate the exclusion clause up front: the inclusion pass must not treat
	// genre names after "without"/"excluding"/"but not" as requested genres, so
	// its working copy starts with the clause cut off. The clause itself is
	// handled by pass 2 against the original text.
	exclusion := exclusionPattern.FindStringSubmatchIndex(text)
	inclusionText := text
	if exclusion != nil {
		inclusionText = text[:exclusion[0]]
	}

	// Pass 1: genre inclusion, longest name first, on a working copy. The
	// candidate list is walked once; a name only uncovered by an earlier erase
	// does not retroactively match.
	work := newWorkingBuffer(inclusionText)
	for _, genre := range vocab.genres {
		if !work.matches(genre.match) {
			continue
		}
		if !containsFold(out.IncludedGenres, genre.name) {
			out.IncludedGenres = append(out.IncludedGenres, genre.name)
		}
		work.erase(genre.erase)
	}

	// Pass 2: exclusion clause on the original, unmutated text. Matches across
	// phrases are intentionally not deduplicated, and a name excluded here may
	// also sit in the included list when the request contradicts itself.
	if exclusion != nil {
		for _, phrase := range exclusionSplit.Split(text[exclusion[2]:exclusion[3]], -1) {
			phrase = strings.TrimSpace(phrase)
			if phrase == "" {
				continue
			}
			for _, genre := range vocab.genres {
				if genre.match.MatchString(phrase) {
					out.ExcludedGenres = append(out.ExcludedGenres, genre.name)
				}
			}
		}
	}

	// Pass 3: year bounds, extracted independently of each other.
	out.YearAfter = intCapture(yearAfterPattern, text)
	out.YearBefore = intCapture(yearBeforePattern, text)

	// Pass 4: runtime bounds. The unit suffix is optional and bare integers are
	// already minutes; no conversion happens.
	out.MinRuntimeMinutes = intCapture(minRuntimePattern, text)
	out.MaxRuntimeMinutes = intCapture(maxRuntimePattern, text)

	// Pass 5: explicit rating phrase, with a quality fallback. An explicit phrase
	// suppresses the fallback even when its numeric capture fails to parse.
	if match := ratingPattern.FindStringSubmatch(text); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			out.MinRating = &value
		}
	} else if qualityPattern.MatchString(text) || len(out.IncludedGenres) > 0 {
		rating := DefaultMinRating
		out.MinRating = &rating
	}

	// Pass 6: language, first match wins.
	for _, language := range vocab.languages {
		if language.match.MatchString(text) {
			out.Language = language.name
			break
		}
	}

	// Pass 7: minimum vote count.
	out.MinVoteCount = intCapture(minVotesPattern, text)

	return out
}

// intCapture returns the first submatch of pattern parsed as a non-negative
// integer, or nil when the pattern does not match or the capture cannot be
// parsed. Parse failures are swallowed deliberately: a malformed capture leaves
// the field unset rather than surfacing an error.
func intCapture(pattern *regexp.Regexp, text string) *int {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	value, err := strconv.Atoi(match[1])
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

func containsFold(items []string, name string) bool {
	for _, item := range items {
		if strings.EqualFold(item, name) {
			return true
		}
	}
	return false
}
