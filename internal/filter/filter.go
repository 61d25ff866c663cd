package filter

import (
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.JobFilter = (*WatchFilter)(nil)

// Criteria configures a WatchFilter. Empty lists and a zero score pass all.
type Criteria struct {
	TitleKeywords   []string
	ExcludeKeywords []string
	Locations       []string
	MinMatchScore   int
}

// WatchFilter selects the postings watch mode reports. Matching is a
// case-insensitive substring test.
type WatchFilter struct {
	titleKeywords   []string
	excludeKeywords []string
	locations       []string
	minMatchScore   int
}

// NewWatchFilter returns a filter for c.
func NewWatchFilter(c Criteria) *WatchFilter {
	return &WatchFilter{
		titleKeywords:   lowerAll(c.TitleKeywords),
		excludeKeywords: lowerAll(c.ExcludeKeywords),
		locations:       lowerAll(c.Locations),
		minMatchScore:   c.MinMatchScore,
	}
}

// Match reports whether job's title contains a title keyword and no excluded
// keyword, its location contains a location keyword, and its match score
// reaches the minimum.
func (f *WatchFilter) Match(job model.Job) bool {
	title := strings.ToLower(job.Title)

	if len(f.titleKeywords) > 0 && !containsAny(title, f.titleKeywords) {
		return false
	}
	if containsAny(title, f.excludeKeywords) {
		return false
	}
	if len(f.locations) > 0 && !containsAny(strings.ToLower(job.Location), f.locations) {
		return false
	}
	return job.MatchScore >= f.minMatchScore
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
