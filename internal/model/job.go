package model

import (
	"context"
	"slices"
	"strings"
	"time"
)

// Source identifies the listing site a posting was scraped from.
type Source string

const (
	SourceSeek     Source = "seek"
	SourceIndeed   Source = "indeed"
	SourceLinkedIn Source = "linkedin"
)

// SalaryNotSpecified is stored when a listing carries no salary text.
const SalaryNotSpecified = "Not specified"

// Job is the unified representation of a posting from any source.
// Fetchers create it partially populated; the detail step fills Description and
// Requirements; enrichment fills Keywords and MatchScore.
type Job struct {
	ID           string            `json:"id"`           // source-prefixed, e.g. "seek-81234567"
	Title        string            `json:"title"`        // job title
	Company      string            `json:"company"`      // hiring company
	Location     string            `json:"location"`     // location string as shown by the source
	Salary       string            `json:"salary"`       // free text or SalaryNotSpecified
	Description  string            `json:"description"`  // plain text, truncated
	Requirements []string          `json:"requirements"` // extracted requirement phrases
	Keywords     []string          `json:"keywords"`     // controlled-vocabulary keywords
	URL          string            `json:"url"`          // listing link
	DatePosted   time.Time         `json:"date_posted"`  // calendar date (midnight UTC)
	Source       Source            `json:"source"`       // set once by the fetcher
	Status       ApplicationStatus `json:"status"`       // caller-owned workflow state
	MatchScore   int               `json:"match_score"`  // 0-100
}

// Clone returns a deep copy so cached values never alias a caller's slices.
func (j Job) Clone() Job {
	j.Requirements = slices.Clone(j.Requirements)
	j.Keywords = slices.Clone(j.Keywords)
	return j
}

// DedupKey is the cross-source duplicate key: lower-cased title and company.
func (j Job) DedupKey() string {
	return strings.ToLower(strings.TrimSpace(j.Title)) + "\x00" + strings.ToLower(strings.TrimSpace(j.Company))
}

// CloneJobs deep copies a result set.
func CloneJobs(jobs []Job) []Job {
	if jobs == nil {
		return nil
	}
	out := make([]Job, len(jobs))
	for i, j := range jobs {
		out[i] = j.Clone()
	}
	return out
}

// Query is one search request against every configured source.
type Query struct {
	Keywords []string
	Location string
}

// Terms returns the keywords space-joined, as sent to the sources.
func (q Query) Terms() string {
	parts := make([]string, 0, len(q.Keywords))
	for _, k := range q.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
	}
	return strings.Join(parts, " ")
}

// JobFetcher fetches and detail-enriches postings from one source.
type JobFetcher interface {
	Source() Source
	FetchJobs(ctx context.Context, q Query) ([]Job, error)
}

// Notifier reports newly discovered postings.
type Notifier interface {
	Notify(jobs []Job) error
}

// JobFilter decides whether a posting is reported by watch mode.
type JobFilter interface {
	Match(job Job) bool
}

// JobStore remembers which postings watch mode has already reported.
type JobStore interface {
	HasSeen(jobID string) (bool, error)
	MarkSeen(jobID string) error
}
