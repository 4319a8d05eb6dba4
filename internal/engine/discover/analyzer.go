package discover

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
)

// maxExpandedQueries bounds downstream fan-out per request when the
// configured limit is unset.
const maxExpandedQueries = 15

// synonymRule substitutes a keyword with equivalent search phrasings.
// Rules are ordered slices, not maps: expansion order must be deterministic.
type synonymRule struct {
	key  string
	syns []string
}

var roleSynonyms = []synonymRule{
	{"ml engineer", []string{"machine learning engineer", "ai engineer"}},
	{"software engineer", []string{"software developer"}},
	{"swe", []string{"software engineer"}},
	{"data scientist", []string{"machine learning scientist"}},
	{"frontend", []string{"front-end developer", "ui engineer"}},
	{"backend", []string{"back-end developer"}},
	{"devops", []string{"platform engineer", "site reliability engineer"}},
	{"pm", []string{"product manager"}},
	{"designer", []string{"product designer", "ux designer"}},
	{"analyst", []string{"data analyst"}},
	{"recruiter", []string{"talent acquisition"}},
}

var techSynonyms = []synonymRule{
	{"golang", []string{"go developer"}},
	{"js", []string{"javascript"}},
	{"k8s", []string{"kubernetes"}},
	{"postgres", []string{"postgresql"}},
	{"react", []string{"reactjs"}},
	{"node", []string{"node.js"}},
	{"ts", []string{"typescript"}},
	{"llm", []string{"large language models"}},
}

// companyAlias maps an informal company name to its canonical search form.
type companyAlias struct {
	alias     string
	canonical string
}

var companyAliases = []companyAlias{
	{"google", "Google"},
	{"alphabet", "Google"},
	{"meta", "Meta"},
	{"facebook", "Meta"},
	{"openai", "OpenAI"},
	{"anthropic", "Anthropic"},
	{"amazon", "Amazon"},
	{"microsoft", "Microsoft"},
	{"apple", "Apple"},
	{"netflix", "Netflix"},
	{"stripe", "Stripe"},
	{"databricks", "Databricks"},
	{"nvidia", "NVIDIA"},
	{"goldman", "Goldman Sachs"},
	{"mckinsey", "McKinsey"},
}

// skillVocab is the fixed skill extraction vocabulary, lowercase.
var skillVocab = []string{
	"python", "golang", "go", "java", "javascript", "typescript", "rust",
	"c++", "c#", "sql", "react", "node.js", "kubernetes", "docker", "aws",
	"gcp", "azure", "terraform", "pytorch", "tensorflow", "machine learning",
	"deep learning", "nlp", "computer vision", "data science", "spark",
	"kafka", "postgresql", "redis", "graphql", "swift", "kotlin", "ruby",
	"excel", "figma", "tableau",
}

// locationEntry maps a location alias to its canonical display form.
type locationEntry struct {
	alias     string
	canonical string
}

var locationVocab = []locationEntry{
	{"new york", "New York"},
	{"nyc", "New York"},
	{"san francisco", "San Francisco"},
	{"bay area", "San Francisco"},
	{"london", "London"},
	{"berlin", "Berlin"},
	{"boston", "Boston"},
	{"chicago", "Chicago"},
	{"seattle", "Seattle"},
	{"austin", "Austin"},
	{"los angeles", "Los Angeles"},
	{"denver", "Denver"},
	{"miami", "Miami"},
	{"toronto", "Toronto"},
	{"dublin", "Dublin"},
	{"singapore", "Singapore"},
	{"new haven", "New Haven"},
	{"washington dc", "Washington DC"},
}

// levelPattern maps a seniority keyword to the normalized tag.
type levelPattern struct {
	pattern string
	level   LevelTag
}

var levelPatterns = []levelPattern{
	{"internship", LevelInternship},
	{"intern", LevelInternship},
	{"new grad", LevelEntry},
	{"entry level", LevelEntry},
	{"entry-level", LevelEntry},
	{"junior", LevelEntry},
	{"associate", LevelAssociate},
	{"mid-senior", LevelMidSenior},
	{"senior", LevelMidSenior},
	{"staff", LevelMidSenior},
	{"principal", LevelMidSenior},
	{"lead", LevelMidSenior},
	{"director", LevelDirector},
	{"head of", LevelDirector},
	{"vice president", LevelExecutive},
	{"chief", LevelExecutive},
	{"executive", LevelExecutive},
}

var remotePatterns = []string{"remote", "work from home", "wfh", "distributed team"}

// roleAtCompanyRe splits queries like "ML engineer at OpenAI".
var roleAtCompanyRe = regexp.MustCompile(`(?i)^(.{2,}?)\s+at\s+(.{2,})$`)

// ProfileHints is the slice of a user profile the analyzer may use for
// expansion. All fields optional.
type ProfileHints struct {
	Skills    []string
	Locations []string
}

// Analyze turns a free-text query (possibly empty) plus optional profile
// hints into a structured search intent. No IO, no clock; output is
// deterministic for identical inputs and configuration. The expansion cap
// comes from Config.MaxExpansions.
// An empty query produces an intent with zero expansions, not an error.
func Analyze(query string, hints *ProfileHints) SearchIntent {
	raw := strings.TrimSpace(query)
	intent := SearchIntent{RawQuery: raw}

	lower := strings.ToLower(raw)

	// --- Vocabulary extraction ---
	for _, skill := range skillVocab {
		if containsWord(lower, skill) {
			intent.Skills = appendUnique(intent.Skills, skill)
		}
	}
	for _, loc := range locationVocab {
		if containsWord(lower, loc.alias) {
			intent.Locations = appendUnique(intent.Locations, loc.canonical)
		}
	}
	for _, lp := range levelPatterns {
		if containsWord(lower, lp.pattern) {
			intent.Levels = appendUniqueLevels(intent.Levels, lp.level)
		}
	}
	for _, p := range remotePatterns {
		if strings.Contains(lower, p) {
			intent.RemoteRequested = true
			break
		}
	}

	if raw == "" {
		return intent
	}

	// --- Expansion: each rule contributes independently, union deduplicated ---
	limit := engine.Cfg.MaxExpansions
	if limit <= 0 {
		limit = maxExpandedQueries
	}
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || len(intent.ExpandedQueries) >= limit {
			return
		}
		for _, existing := range intent.ExpandedQueries {
			if strings.EqualFold(existing, q) {
				return
			}
		}
		intent.ExpandedQueries = append(intent.ExpandedQueries, q)
	}

	add(raw)

	// Company anchoring: "X at Y" gets a literal company-anchored variant.
	if m := roleAtCompanyRe.FindStringSubmatch(raw); m != nil {
		role, company := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		for _, ca := range companyAliases {
			if strings.EqualFold(company, ca.alias) {
				company = ca.canonical
				break
			}
		}
		add(fmt.Sprintf("%s %s jobs", role, company))
		add(fmt.Sprintf("%s careers %s", company, role))
	} else {
		for _, ca := range companyAliases {
			if containsWord(lower, ca.alias) {
				add(fmt.Sprintf("%s jobs %s", strings.TrimSpace(replaceFold(raw, ca.alias, "")), ca.canonical))
				break
			}
		}
	}

	// Role-synonym substitution variants.
	for _, rule := range roleSynonyms {
		if strings.Contains(lower, rule.key) {
			for _, syn := range rule.syns {
				add(replaceFold(raw, rule.key, syn))
			}
		}
	}

	// Tech-stack substitution variants.
	for _, rule := range techSynonyms {
		if containsWord(lower, rule.key) {
			for _, syn := range rule.syns {
				add(replaceFold(raw, rule.key, syn))
			}
		}
	}

	if intent.RemoteRequested && !strings.Contains(lower, "remote") {
		add(raw + " remote")
	}

	// Profile skills broaden the net when the query doesn't mention them.
	if hints != nil {
		added := 0
		for _, skill := range hints.Skills {
			if added >= 2 {
				break
			}
			if !containsWord(lower, strings.ToLower(skill)) {
				add(raw + " " + skill)
				added++
			}
		}
	}

	return intent
}

// containsWord reports whether needle occurs in s on word boundaries.
// Needles ending in non-alphanumerics ("c++", "c#") match on prefix boundary only.
func containsWord(s, needle string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordRune(rune(s[start-1]))
		afterOK := end >= len(s) || !isWordRune(rune(s[end])) || !isWordRune(rune(needle[len(needle)-1]))
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// replaceFold replaces the first case-insensitive occurrence of old with new.
func replaceFold(s, old, new string) string {
	idx := strings.Index(strings.ToLower(s), strings.ToLower(old))
	if idx < 0 {
		return s
	}
	return s[:idx] + new + s[idx+len(old):]
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func appendUniqueLevels(list []LevelTag, v LevelTag) []LevelTag {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
