package discover

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/ghsmc/intro-v2-sub000/internal/engine"
	"github.com/ghsmc/intro-v2-sub000/internal/engine/search"
)

// jobKeywords gate the cheap relevance heuristic: a raw item whose title and
// snippet carry none of these is rejected before any further work.
var jobKeywords = []string{
	"job", "jobs", "hiring", "career", "careers", "position", "opening",
	"apply", "vacancy", "engineer", "developer", "analyst", "manager",
	"intern", "internship", "recruiter", "salary", "role",
}

// jobBoardHosts are hosts whose URLs are listings by construction and skip
// the keyword gate.
var jobBoardHosts = []string{
	"greenhouse.io", "lever.co", "workday.com", "ashbyhq.com",
	"linkedin.com/jobs", "indeed.com", "workatastartup.com", "remoteok.com",
	"wellfound.com", "glassdoor.com",
}

// notPostingMarkers reject items that mention jobs but clearly aren't listings.
var notPostingMarkers = []string{
	"layoffs", "laid off", "job cuts", "salary survey", "salary report",
	"interview questions", "how to get a job", "resume tips",
}

var (
	// "Senior ML Engineer at OpenAI", "Data Analyst - Stripe", "Engineer | Meta"
	titleAtCompanyRe   = regexp.MustCompile(`^(.{2,}?)\s+at\s+([^|–\-]{2,}?)(?:\s*[|–-].*)?$`)
	titleDashCompanyRe = regexp.MustCompile(`^(.{2,}?)\s+[-–|]\s+(.{2,}?)(?:\s*[|–-].*)?$`)

	// "in San Francisco, CA", "— New York, NY", "Location: Berlin"
	snippetLocationRe = regexp.MustCompile(`(?i)(?:located in|location:?|based in)\s+([A-Z][A-Za-z .]+(?:,\s*[A-Z]{2})?)`)

	// "$120k–$180k", "$90,000 - $140,000", "120k-160k USD"
	salaryRangeRe = regexp.MustCompile(`(?i)\$?(\d{2,3})[,.]?(\d{3})?\s*k?\s*[-–—to]+\s*\$?(\d{2,3})[,.]?(\d{3})?\s*k?`)

	// "linkedin.com/in/jane-doe"
	linkedinProfileRe = regexp.MustCompile(`linkedin\.com/in/([a-zA-Z0-9-]+)`)

	// "Class of 2024", "'26"
	gradYearRe = regexp.MustCompile(`(?i)class of (\d{4})|'(\d{2})\b`)
)

var remoteTypeKeywords = []struct {
	keyword string
	remote  string
}{
	{"fully remote", "remote"},
	{"remote-first", "remote"},
	{"remote", "remote"},
	{"hybrid", "hybrid"},
	{"on-site", "onsite"},
	{"onsite", "onsite"},
	{"in office", "onsite"},
}

// Extractor turns raw heterogeneous search hits into typed candidates.
// The optional understanding service refines fields mechanical parsing cannot
// produce; its absence or failure downgrades quality, never correctness.
type Extractor struct {
	understanding engine.Understanding
}

// NewExtractor builds an extractor. understanding may be nil.
func NewExtractor(understanding engine.Understanding) *Extractor {
	return &Extractor{understanding: understanding}
}

// Extract produces zero or one candidate from a raw item. A nil return means
// the item was rejected (irrelevant or unparseable); callers count drops.
func (e *Extractor) Extract(ctx context.Context, raw search.RawResultItem, rawQuery string) *Candidate {
	title := strings.TrimSpace(raw.Title)
	snippet := normalizeSnippet(raw.Snippet)
	if title == "" && snippet == "" {
		return nil
	}

	// Person results route around the job heuristics entirely.
	if isPersonResult(raw.URL, title, snippet) {
		return extractPerson(raw, title, snippet)
	}

	haystack := strings.ToLower(title + " " + snippet)

	if !passesJobGate(raw.URL, haystack) {
		return nil
	}
	for _, marker := range notPostingMarkers {
		if strings.Contains(haystack, marker) {
			return nil
		}
	}

	job := &JobDetails{Description: snippet, PostedAt: raw.PublishedAt}

	// Mechanical field extraction.
	job.Title, job.Company = splitTitleCompany(title)
	if loc := snippetLocationRe.FindStringSubmatch(snippet); loc != nil {
		job.Location = strings.TrimSpace(loc[1])
	} else {
		for _, le := range locationVocab {
			if containsWord(haystack, le.alias) {
				job.Location = le.canonical
				break
			}
		}
	}
	for _, rt := range remoteTypeKeywords {
		if strings.Contains(haystack, rt.keyword) {
			job.RemoteType = rt.remote
			break
		}
	}
	for _, lp := range levelPatterns {
		if containsWord(haystack, lp.pattern) {
			job.Level = lp.level
			break
		}
	}
	for _, skill := range skillVocab {
		if containsWord(haystack, skill) {
			job.Skills = appendUnique(job.Skills, skill)
		}
	}
	job.SalaryMin, job.SalaryMax = parseSalaryRange(haystack)

	// Understanding refinement for fields heuristics can't settle.
	if e.understanding != nil {
		understood, err := e.understanding.ClassifyAndExtract(ctx, title+"\n"+snippet, rawQuery)
		switch {
		case err != nil:
			// Quality enhancement only: keep the mechanical result.
			slog.Debug("extract: understanding unavailable", slog.Any("error", err))
		case understood.IsJobPosting != nil && !*understood.IsJobPosting:
			return nil
		default:
			if job.Company == "" && understood.Company != "" {
				job.Company = understood.Company
			}
			if job.Location == "" && understood.Location != "" {
				job.Location = understood.Location
			}
			if job.Level == "" && understood.Level != "" {
				job.Level = LevelTag(understood.Level)
			}
			for _, s := range understood.Skills {
				job.Skills = appendUnique(job.Skills, strings.ToLower(s))
			}
		}
	}

	if job.Title == "" {
		return nil
	}

	return &Candidate{
		ID:               deriveID(raw.URL, job.Title, job.Company),
		Kind:             KindJob,
		URL:              raw.URL,
		Job:              job,
		SourceProviderID: raw.ProviderID,
		SourceURL:        raw.URL,
	}
}

// passesJobGate applies the cheap keyword relevance test.
func passesJobGate(rawURL, haystack string) bool {
	lowURL := strings.ToLower(rawURL)
	for _, host := range jobBoardHosts {
		if strings.Contains(lowURL, host) {
			return true
		}
	}
	for _, kw := range jobKeywords {
		if containsWord(haystack, kw) {
			return true
		}
	}
	return false
}

// isPersonResult detects people rather than postings.
func isPersonResult(rawURL, title, snippet string) bool {
	if linkedinProfileRe.MatchString(rawURL) {
		return true
	}
	// "Jane Doe - ML Engineer - OpenAI | LinkedIn"
	return strings.HasSuffix(title, "| LinkedIn") && !strings.Contains(strings.ToLower(rawURL), "/jobs")
}

// extractPerson builds a person candidate from a profile-shaped result.
func extractPerson(raw search.RawResultItem, title, snippet string) *Candidate {
	person := &PersonDetails{Snippet: snippet}

	clean := strings.TrimSuffix(title, "| LinkedIn")
	parts := strings.Split(clean, " - ")
	if len(parts) > 0 {
		person.Name = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		person.Title = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		person.Company = strings.TrimSpace(parts[2])
	}
	if person.Name == "" {
		return nil
	}

	lower := strings.ToLower(snippet)
	for _, school := range []string{"yale", "harvard", "stanford", "mit", "princeton", "columbia", "cornell", "berkeley"} {
		if containsWord(lower, school) {
			person.School = strings.ToUpper(school[:1]) + school[1:]
			if school == "mit" {
				person.School = "MIT"
			}
			break
		}
	}
	if m := gradYearRe.FindStringSubmatch(snippet); m != nil {
		if m[1] != "" {
			person.GraduationYear, _ = strconv.Atoi(m[1])
		} else if m[2] != "" {
			yy, _ := strconv.Atoi(m[2])
			person.GraduationYear = 2000 + yy
		}
	}

	return &Candidate{
		ID:               deriveID(raw.URL, person.Name, person.Company),
		Kind:             KindPerson,
		URL:              raw.URL,
		Person:           person,
		SourceProviderID: raw.ProviderID,
		SourceURL:        raw.URL,
	}
}

// splitTitleCompany parses listing titles like "Senior ML Engineer at OpenAI"
// or "Data Analyst - Stripe". Company is empty when no pattern matches.
func splitTitleCompany(title string) (jobTitle, company string) {
	if m := titleAtCompanyRe.FindStringSubmatch(title); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	if m := titleDashCompanyRe.FindStringSubmatch(title); m != nil {
		left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		// Heuristic: the company side is the shorter one without role words.
		if looksLikeRole(left) && !looksLikeRole(right) {
			return left, right
		}
		if looksLikeRole(right) && !looksLikeRole(left) {
			return right, left
		}
		return left, right
	}
	return title, ""
}

var roleWords = []string{"engineer", "developer", "manager", "analyst", "designer", "scientist", "intern", "director", "lead", "recruiter", "consultant"}

func looksLikeRole(s string) bool {
	low := strings.ToLower(s)
	for _, w := range roleWords {
		if strings.Contains(low, w) {
			return true
		}
	}
	return false
}

// parseSalaryRange reads an annual salary band out of free text.
// Returns nils when no range is present.
func parseSalaryRange(haystack string) (min, max *int) {
	m := salaryRangeRe.FindStringSubmatch(haystack)
	if m == nil {
		return nil, nil
	}
	// Bare "10 - 20" ranges are not salaries; demand a k suffix or a full
	// thousands group somewhere in the match.
	if m[2] == "" && m[4] == "" && !strings.Contains(strings.ToLower(m[0]), "k") {
		return nil, nil
	}
	lo := parseSalaryPart(m[1], m[2])
	hi := parseSalaryPart(m[3], m[4])
	if lo == 0 || hi == 0 || hi < lo {
		return nil, nil
	}
	return &lo, &hi
}

func parseSalaryPart(head, tail string) int {
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	if tail != "" {
		// "$120,000" style, already in currency units
		t, err := strconv.Atoi(tail)
		if err != nil {
			return 0
		}
		return n*1000 + t
	}
	// "120k" style
	return n * 1000
}

// normalizeSnippet turns provider snippet payloads into plain text. Snippets
// that still carry markup go through html-to-markdown, with an HTML-tree text
// walk as the fallback for broken fragments.
func normalizeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return s
	}
	if md, err := htmltomarkdown.ConvertString(s); err == nil {
		return strings.TrimSpace(md)
	}
	node, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return engine.CleanHTML(s)
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// deriveID produces the stable dedup identity for a candidate: the same
// opportunity maps to the same id across providers and queries.
func deriveID(rawURL, title, company string) string {
	var key string
	if strings.TrimSpace(rawURL) != "" {
		key = engine.NormalizeURL(rawURL)
	} else {
		key = engine.CanonicalTextKey(title, company)
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum[:8])
}
