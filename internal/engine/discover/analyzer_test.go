package discover

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
)

func TestAnalyze(t *testing.T) {
	t.Run("empty query yields zero expansions", func(t *testing.T) {
		intent := Analyze("", nil)
		assert.Empty(t, intent.ExpandedQueries)
		assert.Empty(t, intent.Skills)
		assert.False(t, intent.RemoteRequested)
	})

	t.Run("whitespace query treated as empty", func(t *testing.T) {
		intent := Analyze("   ", nil)
		assert.Empty(t, intent.ExpandedQueries)
	})

	t.Run("company anchored expansion", func(t *testing.T) {
		intent := Analyze("ML engineer at OpenAI", nil)
		require.GreaterOrEqual(t, len(intent.ExpandedQueries), 2)
		assert.Equal(t, "ML engineer at OpenAI", intent.ExpandedQueries[0])

		anchored := false
		for _, q := range intent.ExpandedQueries {
			if strings.Contains(q, "OpenAI") && q != intent.RawQuery {
				anchored = true
			}
		}
		assert.True(t, anchored, "expected a company-anchored variant, got %v", intent.ExpandedQueries)
	})

	t.Run("role synonym variants", func(t *testing.T) {
		intent := Analyze("swe internship", nil)
		assert.Contains(t, intent.ExpandedQueries, "software engineer internship")
		assert.Contains(t, intent.Levels, LevelInternship)
	})

	t.Run("skill and location extraction is case-insensitive", func(t *testing.T) {
		intent := Analyze("Senior PYTHON developer in New York", nil)
		assert.Contains(t, intent.Skills, "python")
		assert.Contains(t, intent.Locations, "New York")
		assert.Contains(t, intent.Levels, LevelMidSenior)
	})

	t.Run("location alias normalizes", func(t *testing.T) {
		intent := Analyze("data scientist nyc", nil)
		assert.Contains(t, intent.Locations, "New York")
	})

	t.Run("remote detection adds variant", func(t *testing.T) {
		intent := Analyze("golang developer work from home", nil)
		assert.True(t, intent.RemoteRequested)
		assert.Contains(t, intent.ExpandedQueries, "golang developer work from home remote")
	})

	t.Run("profile skills broaden expansion", func(t *testing.T) {
		intent := Analyze("backend role", &ProfileHints{Skills: []string{"Go", "Kafka", "Rust"}})
		assert.Contains(t, intent.ExpandedQueries, "backend role Go")
		assert.Contains(t, intent.ExpandedQueries, "backend role Kafka")
		// capped at two profile-derived variants
		assert.NotContains(t, intent.ExpandedQueries, "backend role Rust")
	})

	t.Run("expansions deduplicated preserving insertion order", func(t *testing.T) {
		intent := Analyze("golang golang developer", nil)
		seen := map[string]bool{}
		for _, q := range intent.ExpandedQueries {
			key := strings.ToLower(q)
			assert.False(t, seen[key], "duplicate expansion %q", q)
			seen[key] = true
		}
	})

	t.Run("expansion cap holds", func(t *testing.T) {
		intent := Analyze("senior swe ml engineer frontend backend devops pm designer analyst golang js k8s at Google", &ProfileHints{Skills: []string{"python", "java"}})
		assert.LessOrEqual(t, len(intent.ExpandedQueries), maxExpandedQueries)
	})

	t.Run("configured cap lowers expansion count", func(t *testing.T) {
		prev := engine.Cfg.MaxExpansions
		engine.Cfg.MaxExpansions = 2
		defer func() { engine.Cfg.MaxExpansions = prev }()

		intent := Analyze("ml engineer", nil)
		require.Len(t, intent.ExpandedQueries, 2)
		assert.Equal(t, "ml engineer", intent.ExpandedQueries[0])
	})

	t.Run("level keywords match whole words only", func(t *testing.T) {
		intent := Analyze("international sales lead generation", nil)
		assert.NotContains(t, intent.Levels, LevelInternship)

		intent = Analyze("software engineering intern", nil)
		assert.Contains(t, intent.Levels, LevelInternship)
	})

	t.Run("deterministic, repeated calls identical", func(t *testing.T) {
		a := Analyze("ML engineer at OpenAI remote", nil)
		b := Analyze("ML engineer at OpenAI remote", nil)
		assert.Equal(t, a, b)
	})
}
