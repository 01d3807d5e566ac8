package filter

import (
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.JobFilter = (*KeywordFilter)(nil)

// KeywordFilter matches postings whose title or company contains any of the
// keywords, whose location contains any of the location keywords and whose
// source is one of the allowed sources. Matching is case-insensitive. Empty
// lists are treated as "match all".
type KeywordFilter struct {
	keywords  []string
	locations []string
	sources   []model.Source
}

// NewKeywordFilter returns a filter over title/company keywords and location
// keywords (case-insensitive substring). Blank entries are ignored.
func NewKeywordFilter(keywords []string, locations []string) *KeywordFilter {
	return &KeywordFilter{
		keywords:  normalize(keywords),
		locations: normalize(locations),
	}
}

// WithSources restricts matches to the given sources.
func (f *KeywordFilter) WithSources(sources ...model.Source) *KeywordFilter {
	f.sources = sources
	return f
}

// Match reports whether job satisfies every non-empty criterion.
func (f *KeywordFilter) Match(job model.JobPosting) bool {
	if len(f.sources) > 0 && !hasSource(f.sources, job.Source) {
		return false
	}
	if len(f.keywords) > 0 && !containsAny(strings.ToLower(job.Title+" "+job.Company), f.keywords) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(strings.ToLower(job.Location), f.locations) {
		return false
	}
	return true
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func hasSource(sources []model.Source, s model.Source) bool {
	for _, src := range sources {
		if src == s {
			return true
		}
	}
	return false
}

func normalize(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
