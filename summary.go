package dfpextract

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	summaryNumberPattern = regexp.MustCompile(`^\d+`)
	summaryNamePattern   = regexp.MustCompile(`^\p{L}.+`)
)

// SummaryEntry is one line of the filing's table of contents.
type SummaryEntry struct {
	Name string
	Page int
}

// SummaryMap is the ordered table of contents. Names may repeat: the
// individual and consolidated sections list the same statements.
type SummaryMap struct {
	Entries []SummaryEntry
}

// Len returns the number of entries.
func (s *SummaryMap) Len() int {
	return len(s.Entries)
}

// Page returns the page of the first entry with the given name.
func (s *SummaryMap) Page(name string) (int, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e.Page, true
		}
	}
	return 0, false
}

// BuildSummary pairs the subtitle elements of a summary region into entries.
// Subtitles starting with digits are page numbers; subtitles starting with a
// letter are names. Each number pairs with the nearest preceding name not yet
// paired. A number with no pending name, a name superseded by another before
// its number arrives, or a name left over at the end fail with
// SummaryImbalanceError. Subtitles matching neither pattern are skipped.
func BuildSummary(elements ElementList, log *slog.Logger) (*SummaryMap, error) {
	if log == nil {
		log = Config{}.logger()
	}

	summary := &SummaryMap{}
	var pending []string

	for _, el := range elements.FilterByFont(TagSubtitle) {
		// Names wrapped over several lines are joined with spaces
		text := collapseNewlines(el.Text)

		if digits := summaryNumberPattern.FindString(text); digits != "" {
			switch {
			case len(pending) == 0:
				return nil, &SummaryImbalanceError{Number: text}
			case len(pending) > 1:
				return nil, &SummaryImbalanceError{Unpaired: pending[:len(pending)-1]}
			}

			page, err := strconv.Atoi(digits)
			if err != nil {
				return nil, &SummaryImbalanceError{Number: text}
			}
			summary.Entries = append(summary.Entries, SummaryEntry{Name: pending[0], Page: page})
			pending = pending[:0]
			continue
		}

		if summaryNamePattern.MatchString(text) {
			pending = append(pending, text)
			continue
		}

		log.Debug("summary subtitle skipped", "page", el.Page, "text", el.Text)
	}

	if len(pending) > 0 {
		return nil, &SummaryImbalanceError{Unpaired: pending}
	}
	return summary, nil
}

// FilterTablePages returns, in summary order, the page after each entry whose
// name does not start with an excluded prefix. The listed page is the
// statement's cover; its grid starts on the next page.
func FilterTablePages(summary *SummaryMap, excludedPrefixes []string) []int {
	var pages []int
	for _, entry := range summary.Entries {
		if hasAnyPrefix(entry.Name, excludedPrefixes) {
			continue
		}
		pages = append(pages, entry.Page+1)
	}
	return pages
}

// hasAnyPrefix reports whether name starts with a prefix and continues past it.
func hasAnyPrefix(name string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && len(name) > len(prefix) && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
