package discover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
	"github.com/ghsmc/intro-v2-sub000/internal/engine/search"
	"github.com/ghsmc/intro-v2-sub000/internal/toolutil"
)

// ErrEmptyQuery is returned when a request carries no usable query text.
var ErrEmptyQuery = errors.New("query is required")

// Options configures a Pipeline. Providers is the ordered fallback chain and
// is the only required field.
type Options struct {
	Providers     []search.Provider
	Understanding engine.Understanding // nil disables extraction refinement
	Profiles      ProfileStore         // nil disables personalization
	Weights       Weights              // zero value means DefaultWeights
	PoolSize      int
	QueryTimeout  time.Duration
}

// Pipeline runs one discovery request end to end: analyze, fan out, extract,
// dedupe, score, rank.
type Pipeline struct {
	orchestrator *Orchestrator
	extractor    *Extractor
	scorer       *Scorer
	profiles     ProfileStore
}

// NewPipeline wires the pipeline stages from options.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{
		orchestrator: NewOrchestrator(opts.Providers, opts.PoolSize, opts.QueryTimeout),
		extractor:    NewExtractor(opts.Understanding),
		scorer:       NewScorer(opts.Weights),
		profiles:     opts.Profiles,
	}
}

// Discover executes one request. Provider failures degrade the result set and
// are reported in Meta; only invalid input or a dead context fail the call.
func (p *Pipeline) Discover(ctx context.Context, req Request) (*Response, error) {
	engine.IncrDiscoveryRequests()

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	limit := req.Limit
	if limit <= 0 {
		limit = engine.Cfg.MaxResults
	}
	if limit <= 0 {
		limit = 20
	}

	if engine.Cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engine.Cfg.RequestTimeout)
		defer cancel()
	}

	cacheKey := engine.CacheKey("discover", query, req.Location, req.JobType, req.Experience, req.UserID, strconv.Itoa(limit))
	if cached, ok := toolutil.CacheLoadJSON[Response](ctx, cacheKey); ok {
		cached.Meta.Cached = true
		return &cached, nil
	}

	var resp *Response
	err := engine.TrackOperation(ctx, "discover", func(ctx context.Context) error {
		var err error
		resp, err = p.run(ctx, req, query, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !resp.Meta.AllProvidersFailed {
		toolutil.CacheStoreJSON(ctx, cacheKey, resp)
	}
	return resp, nil
}

func (p *Pipeline) run(ctx context.Context, req Request, query string, limit int) (*Response, error) {
	profile := p.loadProfile(ctx, req.UserID)

	var hints *ProfileHints
	if profile != nil {
		hints = &ProfileHints{Skills: profile.Skills, Locations: profile.Locations}
	}
	intent := Analyze(composeQuery(query, req), hints)

	raw, stats := p.orchestrator.Run(ctx, intent)

	extracted := make([]*Candidate, 0, len(raw))
	dropped := 0
	for _, item := range raw {
		c := p.extractor.Extract(ctx, item, query)
		if c == nil {
			dropped++
			engine.IncrExtractionDrops()
			continue
		}
		extracted = append(extracted, c)
	}

	deduped := Dedupe(extracted)

	for _, c := range deduped {
		score := p.scorer.Score(c, profile)
		c.Score = &score
	}
	// rank: never by arrival order
	sort.SliceStable(deduped, func(i, j int) bool {
		si, sj := deduped[i].Score.Total, deduped[j].Score.Total
		if si != sj {
			return si > sj
		}
		return deduped[i].ID < deduped[j].ID
	})
	if len(deduped) > limit {
		deduped = deduped[:limit]
	}

	candidates := make([]Candidate, len(deduped))
	for i, c := range deduped {
		candidates[i] = *c
	}

	meta := Meta{
		Queries:        stats,
		RawCount:       len(raw),
		ExtractedCount: len(extracted),
		DroppedCount:   dropped,
		DedupedCount:   len(deduped),
	}
	if len(stats) > 0 {
		meta.AllProvidersFailed = true
		for _, s := range stats {
			if s.Outcome == OutcomeOK {
				meta.AllProvidersFailed = false
				break
			}
		}
	}
	if meta.AllProvidersFailed {
		slog.Warn("discovery: all providers failed",
			slog.String("query", query),
			slog.Int("queries", len(stats)))
	}

	return &Response{
		Query:      query,
		Intent:     intent,
		Candidates: candidates,
		Meta:       meta,
	}, nil
}

// loadProfile fetches the requesting user's profile. Lookup failure is logged
// and discovery proceeds unpersonalized.
func (p *Pipeline) loadProfile(ctx context.Context, userID string) *Profile {
	if p.profiles == nil || userID == "" {
		return nil
	}
	profile, err := p.profiles.GetProfile(ctx, userID)
	if err != nil {
		slog.Warn("discovery: profile lookup failed",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return nil
	}
	return profile
}

// composeQuery folds the request's structured filters into the analyzer's
// query text.
func composeQuery(query string, req Request) string {
	parts := []string{query}
	for _, extra := range []string{req.JobType, req.Experience, req.Location} {
		extra = strings.TrimSpace(extra)
		if extra != "" && !strings.Contains(strings.ToLower(query), strings.ToLower(extra)) {
			parts = append(parts, extra)
		}
	}
	return strings.Join(parts, " ")
}

// AnnotateNarrative binds [n] citation markers in externally generated text
// to the response's candidates.
func AnnotateNarrative(text string, resp *Response) ([]Span, []CitationSource) {
	if resp == nil {
		return MapCitations(text, nil)
	}
	return MapCitations(text, resp.Candidates)
}

// FormatResponse renders a compact human-readable summary of a response.
func FormatResponse(resp *Response) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d opportunities for %q\n", len(resp.Candidates), resp.Query)
	for i, c := range resp.Candidates {
		total := 0
		if c.Score != nil {
			total = c.Score.Total
		}
		switch {
		case c.Job != nil:
			fmt.Fprintf(&sb, "%d. [%d] %s", i+1, total, c.Job.Title)
			if c.Job.Company != "" {
				fmt.Fprintf(&sb, " at %s", c.Job.Company)
			}
			if c.Job.Location != "" {
				fmt.Fprintf(&sb, " (%s)", c.Job.Location)
			}
		case c.Person != nil:
			fmt.Fprintf(&sb, "%d. [%d] %s", i+1, total, c.Person.Name)
			if c.Person.Title != "" {
				fmt.Fprintf(&sb, ", %s", c.Person.Title)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
