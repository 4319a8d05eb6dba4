package discover

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Weights are the relative importance of each scoring factor. They need not
// sum to any particular value; factors a candidate or profile lacks data for
// drop out and the remainder renormalizes.
type Weights struct {
	SkillsAlignment int
	LocationFit     int
	SalaryFit       int
	SeniorityFit    int
	GrowthSignal    int
	Freshness       int
}

// DefaultWeights emphasize skills first, then location.
var DefaultWeights = Weights{
	SkillsAlignment: 30,
	LocationFit:     20,
	SalaryFit:       15,
	SeniorityFit:    15,
	GrowthSignal:    10,
	Freshness:       10,
}

const (
	confidenceHighTotal  = 75
	confidenceHighSkills = 70
	confidenceLowTotal   = 40
	headlineTotal        = 85
	reasoningFactorMin   = 70
)

var growthMarkers = []string{
	"series a", "series b", "series c", "fast-growing", "fast growing",
	"rapidly growing", "hypergrowth", "yc ", "y combinator", "just raised",
	"recently funded", "funding", "scaling", "stealth",
}

// Scorer assigns deterministic match scores against a profile. The clock is
// injected so freshness scoring is reproducible.
type Scorer struct {
	weights Weights
	now     func() time.Time
}

// NewScorer builds a scorer with the given weights. A zero Weights value
// falls back to DefaultWeights.
func NewScorer(weights Weights) *Scorer {
	if weights == (Weights{}) {
		weights = DefaultWeights
	}
	return &Scorer{weights: weights, now: time.Now}
}

// factor is one evaluated scoring dimension. Inapplicable factors carry no
// weight in the total.
type factor struct {
	name       string
	weight     int
	sub        int // 0..100
	applicable bool
	reason     string
}

// Score computes the candidate's match against profile. profile may be nil;
// scoring then degrades to the factors that need no personalization.
// The same inputs always produce the same score.
func (s *Scorer) Score(c *Candidate, profile *Profile) MatchScore {
	var factors []factor
	switch {
	case c.Job != nil:
		factors = s.jobFactors(c.Job, profile)
	case c.Person != nil:
		factors = s.personFactors(c.Person, profile)
	}

	breakdown := make(map[string]int, len(factors))
	weightSum, weighted := 0, 0
	for _, f := range factors {
		if !f.applicable {
			continue
		}
		breakdown[f.name] = f.sub
		weightSum += f.weight
		weighted += f.sub * f.weight
	}

	total := 0
	if weightSum > 0 {
		total = (weighted + weightSum/2) / weightSum
	}

	var reasoning []string
	if total > headlineTotal {
		reasoning = append(reasoning, "Exceptional match across most factors")
	}
	// Factor reasons run strongest-first; ties keep declaration order.
	strongest := make([]factor, 0, len(factors))
	for _, f := range factors {
		if f.applicable && f.sub >= reasoningFactorMin && f.reason != "" {
			strongest = append(strongest, f)
		}
	}
	sort.SliceStable(strongest, func(i, j int) bool { return strongest[i].sub > strongest[j].sub })
	for _, f := range strongest {
		reasoning = append(reasoning, f.reason)
	}

	skillsSub, skillsKnown := breakdown["skillsAlignment"]
	confidence := ConfidenceMedium
	switch {
	case total >= confidenceHighTotal && skillsKnown && skillsSub >= confidenceHighSkills:
		confidence = ConfidenceHigh
	case total < confidenceLowTotal:
		confidence = ConfidenceLow
	}

	return MatchScore{
		Total:      total,
		Breakdown:  breakdown,
		Reasoning:  reasoning,
		Confidence: confidence,
	}
}

func (s *Scorer) jobFactors(job *JobDetails, profile *Profile) []factor {
	var profileSkills, profileLocations []string
	var salaryWant *int
	var level LevelTag
	if profile != nil {
		profileSkills = profile.Skills
		profileLocations = profile.Locations
		salaryWant = profile.SalaryExpectation
		level = profile.ExperienceLevel
	}

	skills := scoreSkills(profileSkills, job.Skills, job.Description)
	location := scoreLocation(profileLocations, job.Location, job.RemoteType)
	salary := scoreSalary(salaryWant, job.SalaryMin, job.SalaryMax)
	seniority := scoreSeniority(level, job.Level)
	growth := scoreGrowth(job.Description)
	freshness := scoreFreshness(job.PostedAt, s.now())

	return []factor{
		{"skillsAlignment", s.weights.SkillsAlignment, skills.sub, skills.applicable, skills.reason},
		{"locationFit", s.weights.LocationFit, location.sub, location.applicable, location.reason},
		{"salaryFit", s.weights.SalaryFit, salary.sub, salary.applicable, salary.reason},
		{"seniorityFit", s.weights.SeniorityFit, seniority.sub, seniority.applicable, seniority.reason},
		{"growthSignal", s.weights.GrowthSignal, growth.sub, growth.applicable, growth.reason},
		{"freshness", s.weights.Freshness, freshness.sub, freshness.applicable, freshness.reason},
	}
}

// personFactors is the reduced set for people: skills inferred from their
// headline text, seniority from title keywords. Salary, growth and freshness
// have no meaning for a person.
func (s *Scorer) personFactors(p *PersonDetails, profile *Profile) []factor {
	var profileSkills []string
	var level LevelTag
	if profile != nil {
		profileSkills = profile.Skills
		level = profile.ExperienceLevel
	}

	text := strings.ToLower(p.Title + " " + p.Snippet)
	var theirSkills []string
	for _, skill := range skillVocab {
		if containsWord(text, skill) {
			theirSkills = append(theirSkills, skill)
		}
	}
	skills := scoreSkills(profileSkills, theirSkills, p.Snippet)

	theirLevel := LevelTag("")
	for _, lp := range levelPatterns {
		if containsWord(text, lp.pattern) {
			theirLevel = lp.level
			break
		}
	}
	seniority := scoreSeniority(level, theirLevel)

	return []factor{
		{"skillsAlignment", s.weights.SkillsAlignment, skills.sub, skills.applicable, skills.reason},
		{"seniorityFit", s.weights.SeniorityFit, seniority.sub, seniority.applicable, seniority.reason},
	}
}

type subScore struct {
	sub        int
	applicable bool
	reason     string
}

// scoreSkills is an overlap coefficient over normalized skill sets, with the
// candidate description as a fallback haystack for profile skills the
// extractor missed.
func scoreSkills(profileSkills, candidateSkills []string, description string) subScore {
	if len(profileSkills) == 0 {
		return subScore{}
	}
	theirs := make(map[string]bool, len(candidateSkills))
	for _, s := range candidateSkills {
		theirs[strings.ToLower(s)] = true
	}
	descLower := strings.ToLower(description)

	var matched []string
	for _, s := range profileSkills {
		low := strings.ToLower(s)
		if theirs[low] || containsWord(descLower, low) {
			matched = append(matched, low)
		}
	}
	if len(candidateSkills) == 0 && len(matched) == 0 {
		// nothing known about the candidate's skills at all
		return subScore{}
	}
	denom := len(profileSkills)
	if len(candidateSkills) > 0 && len(candidateSkills) < denom {
		denom = len(candidateSkills)
	}
	sub := 100 * len(matched) / denom
	if sub > 100 {
		sub = 100
	}
	var reason string
	if len(matched) > 0 {
		sort.Strings(matched)
		reason = "Strong skills overlap: " + strings.Join(matched, ", ")
	}
	return subScore{sub: sub, applicable: true, reason: reason}
}

func scoreLocation(profileLocations []string, jobLocation, remoteType string) subScore {
	if len(profileLocations) == 0 || (jobLocation == "" && remoteType == "") {
		return subScore{}
	}
	if remoteType == "remote" {
		return subScore{sub: 90, applicable: true, reason: "Fully remote role"}
	}
	jobLower := strings.ToLower(jobLocation)
	for _, loc := range profileLocations {
		ll := strings.ToLower(loc)
		if ll != "" && (strings.Contains(jobLower, ll) || strings.Contains(ll, jobLower) && jobLower != "") {
			return subScore{sub: 100, applicable: true, reason: "Located in " + jobLocation}
		}
	}
	if remoteType == "hybrid" {
		return subScore{sub: 40, applicable: true}
	}
	return subScore{sub: 10, applicable: true}
}

func scoreSalary(want, min, max *int) subScore {
	if want == nil || (min == nil && max == nil) {
		return subScore{}
	}
	hi := 0
	if max != nil {
		hi = *max
	} else {
		hi = *min
	}
	switch {
	case hi >= *want:
		return subScore{sub: 100, applicable: true, reason: fmt.Sprintf("Compensation up to $%d meets expectations", hi)}
	case hi*10 >= *want*8: // within 20% under
		return subScore{sub: 60, applicable: true}
	default:
		return subScore{sub: 15, applicable: true}
	}
}

var levelRank = map[LevelTag]int{
	LevelInternship: 0,
	LevelEntry:      1,
	LevelAssociate:  2,
	LevelMidSenior:  3,
	LevelDirector:   4,
	LevelExecutive:  5,
}

func scoreSeniority(profileLevel, jobLevel LevelTag) subScore {
	if profileLevel == "" || jobLevel == "" {
		return subScore{}
	}
	pr, ok1 := levelRank[profileLevel]
	jr, ok2 := levelRank[jobLevel]
	if !ok1 || !ok2 {
		return subScore{}
	}
	diff := pr - jr
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 0:
		return subScore{sub: 100, applicable: true, reason: "Seniority level matches"}
	case 1:
		return subScore{sub: 60, applicable: true}
	default:
		return subScore{sub: 20, applicable: true}
	}
}

func scoreGrowth(description string) subScore {
	if description == "" {
		return subScore{}
	}
	lower := strings.ToLower(description)
	hits := 0
	for _, marker := range growthMarkers {
		if strings.Contains(lower, marker) {
			hits++
		}
	}
	sub := hits * 40
	if sub > 100 {
		sub = 100
	}
	var reason string
	if hits > 0 {
		reason = "Growth-stage signals in the listing"
	}
	return subScore{sub: sub, applicable: true, reason: reason}
}

func scoreFreshness(postedAt *time.Time, now time.Time) subScore {
	if postedAt == nil {
		return subScore{}
	}
	age := now.Sub(*postedAt)
	switch {
	case age <= 7*24*time.Hour:
		return subScore{sub: 100, applicable: true, reason: "Posted within the last week"}
	case age <= 30*24*time.Hour:
		return subScore{sub: 70, applicable: true}
	case age <= 90*24*time.Hour:
		return subScore{sub: 40, applicable: true}
	default:
		return subScore{sub: 10, applicable: true}
	}
}
