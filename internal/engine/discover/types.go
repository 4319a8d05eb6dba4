// Package discover implements the opportunity discovery and ranking pipeline:
// query analysis, concurrent provider fan-out with fallback, extraction of
// typed candidates from raw search hits, cross-provider deduplication,
// deterministic multi-factor match scoring, and citation binding for
// externally generated narrative text.
package discover

import (
	"time"

	"github.com/ghsmc/intro-v2-sub000/internal/engine/search"
)

// LevelTag is a normalized seniority level.
type LevelTag string

const (
	LevelInternship LevelTag = "internship"
	LevelEntry      LevelTag = "entry"
	LevelAssociate  LevelTag = "associate"
	LevelMidSenior  LevelTag = "mid-senior"
	LevelDirector   LevelTag = "director"
	LevelExecutive  LevelTag = "executive"
)

// SearchIntent is the structured form of a free-text query. Immutable once
// produced by the analyzer.
type SearchIntent struct {
	RawQuery        string     `json:"raw_query"`
	ExpandedQueries []string   `json:"expanded_queries"` // deduplicated, insertion order
	Skills          []string   `json:"skills,omitempty"`
	Locations       []string   `json:"locations,omitempty"`
	RemoteRequested bool       `json:"remote_requested,omitempty"`
	Levels          []LevelTag `json:"levels,omitempty"`
}

// CandidateKind discriminates the Candidate union.
type CandidateKind string

const (
	KindJob    CandidateKind = "job"
	KindPerson CandidateKind = "person"
)

// JobDetails holds the job-specific fields of a candidate.
type JobDetails struct {
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	RemoteType  string     `json:"remote_type,omitempty"` // onsite, hybrid, remote
	Description string     `json:"description"`
	SalaryMin   *int       `json:"salary_min,omitempty"` // annual, currency units
	SalaryMax   *int       `json:"salary_max,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Level       LevelTag   `json:"level,omitempty"`
	Skills      []string   `json:"skills,omitempty"`
}

// PersonDetails holds the person-specific fields of a candidate.
type PersonDetails struct {
	Name           string `json:"name"`
	Title          string `json:"title,omitempty"`
	Company        string `json:"company,omitempty"`
	School         string `json:"school,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
	Snippet        string `json:"snippet,omitempty"`
}

// Candidate is one normalized job or person record. Exactly one of Job and
// Person is set, matching Kind. ID is derived deterministically from the
// normalized URL (or title+company when no URL) and is the dedup key.
type Candidate struct {
	ID               string         `json:"id"`
	Kind             CandidateKind  `json:"kind"`
	URL              string         `json:"url"`
	Job              *JobDetails    `json:"job,omitempty"`
	Person           *PersonDetails `json:"person,omitempty"`
	SourceProviderID string         `json:"source_provider_id"`
	SourceURL        string         `json:"source_url"`
	Score            *MatchScore    `json:"score,omitempty"` // set by the scorer
}

// Confidence grades how much to trust a match score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MatchScore is the deterministic, explainable relevance score of one
// candidate against one profile. Recomputed fresh per request, never
// persisted as authoritative.
type MatchScore struct {
	Total      int            `json:"total"` // 0-100
	Breakdown  map[string]int `json:"breakdown"`
	Reasoning  []string       `json:"reasoning,omitempty"`
	Confidence Confidence     `json:"confidence"`
}

// CitationSource binds one narrative marker [index] to the candidate that
// justifies it. Scoped to a single narrative text, never reused.
type CitationSource struct {
	Index       int    `json:"index"` // 1-based, matches the [n] marker
	CandidateID string `json:"candidate_id"`
	Domain      string `json:"domain"`
	Title       string `json:"title"`
	Snippet     string `json:"snippet,omitempty"`
}

// QueryOutcome classifies how one expanded query fared.
type QueryOutcome string

const (
	OutcomeOK          QueryOutcome = "ok"
	OutcomeRateLimited QueryOutcome = "rate_limited"
	OutcomeFailed      QueryOutcome = "failed"
	OutcomeTimedOut    QueryOutcome = "timed_out"
)

// QueryStats is per-query orchestration metadata.
type QueryStats struct {
	Query       string       `json:"query"`
	ProviderID  string       `json:"provider_id,omitempty"` // provider that served it
	LatencyMS   int64        `json:"latency_ms"`
	ResultCount int          `json:"result_count"`
	Outcome     QueryOutcome `json:"outcome"`
	Error       string       `json:"error,omitempty"`
	FellBack    bool         `json:"fell_back"` // a fallback provider served this query
}

// Meta aggregates pipeline diagnostics for one discovery request.
type Meta struct {
	Queries            []QueryStats `json:"queries"`
	RawCount           int          `json:"raw_count"`
	ExtractedCount     int          `json:"extracted_count"`
	DroppedCount       int          `json:"dropped_count"`
	DedupedCount       int          `json:"deduped_count"`
	AllProvidersFailed bool         `json:"all_providers_failed"`
	Cached             bool         `json:"cached,omitempty"`
}

// Request is one discovery call from the surrounding application.
type Request struct {
	Query      string `json:"query"`
	Location   string `json:"location,omitempty"`
	JobType    string `json:"job_type,omitempty"`
	Experience string `json:"experience,omitempty"`
	Limit      int    `json:"limit,omitempty"`
	UserID     string `json:"user_id,omitempty"` // personalization via profile store
}

// Response is the ranked result of one discovery call. Candidates are sorted
// by score total descending, ties by id ascending.
type Response struct {
	Query      string       `json:"query"`
	Intent     SearchIntent `json:"intent"`
	Candidates []Candidate  `json:"candidates"`
	Meta       Meta         `json:"meta"`
}

// queryResult pairs one expanded query's raw hits with its stats.
type queryResult struct {
	items []search.RawResultItem
	stats QueryStats
}
