package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedScorer(weights Weights) *Scorer {
	s := NewScorer(weights)
	s.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return s
}

func intp(n int) *int { return &n }

func TestScoreSkillsDominateForMatchingProfile(t *testing.T) {
	s := fixedScorer(Weights{})
	posted := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:       "Machine Learning Engineer",
			Company:     "OpenAI",
			Location:    "San Francisco",
			Level:       LevelEntry,
			Skills:      []string{"python", "pytorch", "machine learning"},
			Description: "Train and deploy large models. Python and PyTorch.",
			SalaryMin:   intp(180000),
			SalaryMax:   intp(250000),
			PostedAt:    &posted,
		},
	}
	profile := &Profile{
		Skills:            []string{"Python", "PyTorch"},
		Locations:         []string{"San Francisco"},
		SalaryExpectation: intp(160000),
		ExperienceLevel:   LevelEntry,
	}

	score := s.Score(c, profile)
	assert.Greater(t, score.Breakdown["skillsAlignment"], 50)
	assert.Equal(t, 100, score.Breakdown["locationFit"])
	assert.Equal(t, 100, score.Breakdown["salaryFit"])
	assert.Equal(t, 100, score.Breakdown["seniorityFit"])
	assert.Equal(t, 100, score.Breakdown["freshness"])
	assert.Greater(t, score.Total, 80)
	assert.Equal(t, ConfidenceHigh, score.Confidence)
	assert.NotEmpty(t, score.Reasoning)
}

func TestScoreRenormalizesMissingFactors(t *testing.T) {
	s := fixedScorer(Weights{})
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:  "Backend Engineer",
			Skills: []string{"golang", "kubernetes"},
		},
	}
	profile := &Profile{Skills: []string{"golang", "kubernetes"}}

	score := s.Score(c, profile)
	// only skills applies: no location, salary, level, description or date data
	assert.Contains(t, score.Breakdown, "skillsAlignment")
	assert.NotContains(t, score.Breakdown, "locationFit")
	assert.NotContains(t, score.Breakdown, "salaryFit")
	assert.NotContains(t, score.Breakdown, "freshness")
	assert.Equal(t, 100, score.Breakdown["skillsAlignment"])
	// perfect skills should still carry the renormalized total high
	assert.Greater(t, score.Total, 70)
}

func TestScoreNilProfileStillScores(t *testing.T) {
	s := fixedScorer(Weights{})
	posted := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:       "Data Engineer",
			Description: "Fast-growing startup, just raised a Series B.",
			PostedAt:    &posted,
		},
	}
	score := s.Score(c, nil)
	assert.NotContains(t, score.Breakdown, "skillsAlignment")
	assert.Greater(t, score.Breakdown["growthSignal"], 0)
	assert.Equal(t, 100, score.Breakdown["freshness"])
	assert.Greater(t, score.Total, 0)
}

func TestScoreDeterministic(t *testing.T) {
	s := fixedScorer(Weights{})
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:    "Platform Engineer",
			Location: "New York",
			Skills:   []string{"golang", "aws", "terraform"},
			Level:    LevelMidSenior,
		},
	}
	profile := &Profile{
		Skills:          []string{"golang", "terraform"},
		Locations:       []string{"New York"},
		ExperienceLevel: LevelEntry,
	}
	first := s.Score(c, profile)
	second := s.Score(c, profile)
	assert.Equal(t, first, second)
}

func TestScoreLowConfidenceForPoorMatch(t *testing.T) {
	s := fixedScorer(Weights{})
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:    "Chief Financial Officer",
			Location: "Miami",
			Level:    LevelExecutive,
			Skills:   []string{"excel"},
			PostedAt: &old,
		},
	}
	profile := &Profile{
		Skills:          []string{"python", "pytorch"},
		Locations:       []string{"San Francisco"},
		ExperienceLevel: LevelInternship,
	}
	score := s.Score(c, profile)
	assert.Equal(t, ConfidenceLow, score.Confidence)
	assert.Less(t, score.Total, 40)
}

func TestScorePersonReducedFactors(t *testing.T) {
	s := fixedScorer(Weights{})
	c := &Candidate{
		ID:   "pp",
		Kind: KindPerson,
		Person: &PersonDetails{
			Name:    "Jane Doe",
			Title:   "Senior Machine Learning Engineer",
			Company: "OpenAI",
			Snippet: "Working on PyTorch internals and Python tooling.",
		},
	}
	profile := &Profile{
		Skills:          []string{"python", "pytorch"},
		ExperienceLevel: LevelMidSenior,
	}
	score := s.Score(c, profile)
	require.Contains(t, score.Breakdown, "skillsAlignment")
	require.Contains(t, score.Breakdown, "seniorityFit")
	assert.NotContains(t, score.Breakdown, "locationFit")
	assert.NotContains(t, score.Breakdown, "salaryFit")
	assert.NotContains(t, score.Breakdown, "growthSignal")
	assert.Equal(t, 100, score.Breakdown["seniorityFit"])
	assert.Greater(t, score.Breakdown["skillsAlignment"], 50)
}

func TestScoreReasoningOrderedByFactorStrength(t *testing.T) {
	s := fixedScorer(Weights{})
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:  "Senior Data Engineer",
			Level:  LevelMidSenior,
			Skills: []string{"python", "pytorch", "sql", "kubernetes"},
		},
	}
	profile := &Profile{
		Skills:          []string{"python", "pytorch", "sql", "go"},
		ExperienceLevel: LevelMidSenior,
	}
	score := s.Score(c, profile)
	require.Equal(t, 100, score.Breakdown["seniorityFit"])
	require.Equal(t, 75, score.Breakdown["skillsAlignment"])
	// seniority scored higher, so its reason leads even though the skills
	// factor is declared first
	require.Len(t, score.Reasoning, 2)
	assert.Equal(t, "Seniority level matches", score.Reasoning[0])
	assert.Equal(t, "Strong skills overlap: python, pytorch, sql", score.Reasoning[1])
}

func TestScoreCustomWeights(t *testing.T) {
	heavySkills := Weights{SkillsAlignment: 100, LocationFit: 1, SalaryFit: 1, SeniorityFit: 1, GrowthSignal: 1, Freshness: 1}
	s := fixedScorer(heavySkills)
	c := &Candidate{
		ID:   "aa",
		Kind: KindJob,
		Job: &JobDetails{
			Title:    "ML Engineer",
			Location: "Berlin",
			Skills:   []string{"python"},
		},
	}
	profile := &Profile{Skills: []string{"python"}, Locations: []string{"Tokyo"}}
	score := s.Score(c, profile)
	// near-total weight on a perfect skills sub-score
	assert.Greater(t, score.Total, 90)
}
