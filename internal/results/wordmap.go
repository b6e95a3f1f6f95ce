package results

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"surveystudio/internal/model"
)

// MaxWords caps the fallback word map
const MaxWords = 50

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "any": {}, "can": {}, "had": {}, "her": {},
	"was": {}, "one": {}, "our": {}, "out": {}, "has": {}, "have": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {}, "will": {},
	"would": {}, "there": {}, "their": {}, "what": {}, "about": {},
	"which": {}, "when": {}, "were": {}, "been": {}, "more": {}, "some": {},
	"very": {}, "just": {}, "also": {}, "into": {}, "than": {}, "its": {},
}

// WordMap builds a frequency table from free-text answers. Words are
// case folded; stop words and words shorter than three runes are dropped.
// Entries are ordered by count, then alphabetically.
func WordMap(responses []string) []model.WordCount {
	fold := cases.Fold()
	counts := make(map[string]int)
	for _, r := range responses {
		words := strings.FieldsFunc(fold.String(r), func(c rune) bool {
			return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '\''
		})
		for _, w := range words {
			w = strings.Trim(w, "'")
			if utf8.RuneCountInString(w) < 3 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			counts[w]++
		}
	}

	out := make([]model.WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, model.WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > MaxWords {
		out = out[:MaxWords]
	}
	return out
}
