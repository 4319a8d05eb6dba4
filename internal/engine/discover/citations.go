package discover

import (
	"strconv"
	"strings"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
)

// Span is one segment of annotated narrative text. Citation is nil for plain
// prose segments. Concatenating Text over all spans reproduces the input
// exactly.
type Span struct {
	Text     string          `json:"text"`
	Citation *CitationSource `json:"citation,omitempty"`
}

// MapCitations scans narrative text left to right for [n] markers and binds
// each to the nth candidate (1-based). Markers pointing outside the candidate
// list stay as literal text. A marker number repeated later in the text binds
// to the same source. The returned sources are unique per index, ordered by
// first appearance.
func MapCitations(text string, candidates []Candidate) ([]Span, []CitationSource) {
	if text == "" {
		return nil, nil
	}

	var spans []Span
	seen := make(map[int]*CitationSource)
	var order []int

	plainStart := 0
	i := 0
	for i < len(text) {
		if text[i] != '[' {
			i++
			continue
		}
		end := strings.IndexByte(text[i:], ']')
		if end < 0 {
			break
		}
		end += i
		n, err := strconv.Atoi(text[i+1 : end])
		if err != nil || n < 1 || n > len(candidates) {
			// not a marker, or out of range: leave it literal
			i++
			continue
		}

		if plainStart < i {
			spans = append(spans, Span{Text: text[plainStart:i]})
		}
		src, ok := seen[n]
		if !ok {
			s := buildSource(n, candidates[n-1])
			src = &s
			seen[n] = src
			order = append(order, n)
		}
		spans = append(spans, Span{Text: text[i : end+1], Citation: src})
		engine.IncrCitationResolutions()

		i = end + 1
		plainStart = i
	}
	if plainStart < len(text) {
		spans = append(spans, Span{Text: text[plainStart:]})
	}
	sources := make([]CitationSource, 0, len(order))
	for _, n := range order {
		sources = append(sources, *seen[n])
	}
	if len(sources) == 0 {
		sources = nil
	}
	return spans, sources
}

// buildSource derives the displayable source record for one candidate.
func buildSource(index int, c Candidate) CitationSource {
	src := CitationSource{
		Index:       index,
		CandidateID: c.ID,
		Domain:      engine.Domain(c.SourceURL),
	}
	switch {
	case c.Job != nil:
		src.Title = c.Job.Title
		if c.Job.Company != "" {
			src.Title += " at " + c.Job.Company
		}
		src.Snippet = engine.Truncate(c.Job.Description, 200)
	case c.Person != nil:
		src.Title = c.Person.Name
		if c.Person.Title != "" {
			src.Title += ", " + c.Person.Title
		}
		src.Snippet = engine.Truncate(c.Person.Snippet, 200)
	}
	return src
}
