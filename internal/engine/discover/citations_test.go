package discover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func citationCandidates() []Candidate {
	return []Candidate{
		{
			ID:        "c1",
			Kind:      KindJob,
			SourceURL: "https://www.openai.com/careers/ml-engineer",
			Job:       &JobDetails{Title: "ML Engineer", Company: "OpenAI", Description: "Train large models."},
		},
		{
			ID:        "c2",
			Kind:      KindJob,
			SourceURL: "https://stripe.com/jobs/analyst",
			Job:       &JobDetails{Title: "Data Analyst", Company: "Stripe"},
		},
		{
			ID:        "c3",
			Kind:      KindPerson,
			SourceURL: "https://linkedin.com/in/jane-doe",
			Person:    &PersonDetails{Name: "Jane Doe", Title: "Recruiter", Snippet: "Hiring for ML roles."},
		},
	}
}

func joinSpans(spans []Span) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func TestMapCitationsBindsMarkers(t *testing.T) {
	text := "OpenAI is hiring ML engineers [1] and Stripe needs analysts [2]."
	spans, sources := MapCitations(text, citationCandidates())

	assert.Equal(t, text, joinSpans(spans))
	require.Len(t, sources, 2)
	assert.Equal(t, 1, sources[0].Index)
	assert.Equal(t, "c1", sources[0].CandidateID)
	assert.Equal(t, "openai.com", sources[0].Domain)
	assert.Equal(t, "ML Engineer at OpenAI", sources[0].Title)
	assert.Equal(t, 2, sources[1].Index)
	assert.Equal(t, "c2", sources[1].CandidateID)

	var cited []string
	for _, s := range spans {
		if s.Citation != nil {
			cited = append(cited, s.Text)
		}
	}
	assert.Equal(t, []string{"[1]", "[2]"}, cited)
}

func TestMapCitationsRepeatedMarkerSharesSource(t *testing.T) {
	text := "The role [1] is remote. Apply soon [1]."
	spans, sources := MapCitations(text, citationCandidates())

	assert.Equal(t, text, joinSpans(spans))
	require.Len(t, sources, 1)

	var cites []*CitationSource
	for _, s := range spans {
		if s.Citation != nil {
			cites = append(cites, s.Citation)
		}
	}
	require.Len(t, cites, 2)
	assert.Same(t, cites[0], cites[1])
}

func TestMapCitationsOutOfRangeStaysLiteral(t *testing.T) {
	text := "Good role [1], bogus [9], zero [0], junk [x]."
	spans, sources := MapCitations(text, citationCandidates())

	assert.Equal(t, text, joinSpans(spans))
	require.Len(t, sources, 1)
	assert.Equal(t, 1, sources[0].Index)

	marked := 0
	for _, s := range spans {
		if s.Citation != nil {
			marked++
		}
	}
	assert.Equal(t, 1, marked)
}

func TestMapCitationsNoMarkers(t *testing.T) {
	text := "Nothing to cite here."
	spans, sources := MapCitations(text, citationCandidates())
	assert.Equal(t, text, joinSpans(spans))
	assert.Empty(t, sources)
}

func TestMapCitationsEmptyText(t *testing.T) {
	spans, sources := MapCitations("", citationCandidates())
	assert.Nil(t, spans)
	assert.Nil(t, sources)
}

func TestMapCitationsPersonSource(t *testing.T) {
	text := "Talk to [3] about referrals."
	_, sources := MapCitations(text, citationCandidates())
	require.Len(t, sources, 1)
	assert.Equal(t, "c3", sources[0].CandidateID)
	assert.Equal(t, "Jane Doe, Recruiter", sources[0].Title)
	assert.Equal(t, "linkedin.com", sources[0].Domain)
}

func TestMapCitationsUnclosedBracketPreserved(t *testing.T) {
	text := "Dangling [1 marker and a real [2] one."
	spans, sources := MapCitations(text, citationCandidates())
	assert.Equal(t, text, joinSpans(spans))
	require.Len(t, sources, 1)
	assert.Equal(t, 2, sources[0].Index)
}
