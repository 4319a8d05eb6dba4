package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobCandidate(id string, mutate func(*JobDetails)) *Candidate {
	j := &JobDetails{Title: "ML Engineer"}
	if mutate != nil {
		mutate(j)
	}
	return &Candidate{ID: id, Kind: KindJob, URL: "https://example.com/" + id, Job: j}
}

func TestDedupeKeepsRichestPerID(t *testing.T) {
	posted := time.Now()
	sparse := jobCandidate("aa", nil)
	rich := jobCandidate("aa", func(j *JobDetails) {
		j.Company = "OpenAI"
		j.Location = "San Francisco"
		j.PostedAt = &posted
		j.Skills = []string{"python"}
	})
	other := jobCandidate("bb", nil)

	out := Dedupe([]*Candidate{sparse, other, rich})
	require.Len(t, out, 2)
	// survivor keeps the first-seen position of its id
	assert.Same(t, rich, out[0])
	assert.Same(t, other, out[1])
}

func TestDedupeTieKeepsEarliest(t *testing.T) {
	first := jobCandidate("aa", func(j *JobDetails) { j.Company = "Stripe" })
	second := jobCandidate("aa", func(j *JobDetails) { j.Company = "Stripe Inc" })

	out := Dedupe([]*Candidate{first, second})
	require.Len(t, out, 1)
	assert.Same(t, first, out[0])
}

func TestDedupeIdempotent(t *testing.T) {
	in := []*Candidate{
		jobCandidate("aa", nil),
		jobCandidate("bb", nil),
		jobCandidate("aa", func(j *JobDetails) { j.Company = "Meta" }),
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	assert.Equal(t, once, twice)
}

func TestDedupeUniqueInputUnchanged(t *testing.T) {
	in := []*Candidate{jobCandidate("aa", nil), jobCandidate("bb", nil), jobCandidate("cc", nil)}
	out := Dedupe(in)
	require.Len(t, out, 3)
	for i := range in {
		assert.Same(t, in[i], out[i])
	}
}

func TestDedupeMixedKinds(t *testing.T) {
	person := &Candidate{ID: "pp", Kind: KindPerson, Person: &PersonDetails{Name: "Jane Doe", Company: "OpenAI"}}
	job := jobCandidate("aa", nil)
	out := Dedupe([]*Candidate{person, job, person})
	require.Len(t, out, 2)
	assert.Same(t, person, out[0])
	assert.Same(t, job, out[1])
}
