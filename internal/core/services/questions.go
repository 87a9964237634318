package services

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/athena-labs/athena-cli/internal/core/domain"
)

// Extraction method names recorded on extracted questions.
const (
	methodQMarker       = "q-marker"
	methodNumberedLine  = "numbered-line"
	methodCommandVerb   = "command-verb"
	methodInterrogative = "interrogative"
	methodReference     = "reference-phrase"
)

// Question length bounds. Shorter matches are captions or noise,
// longer ones are whole sections swallowed by a greedy strategy.
const (
	minQuestionLen = 20
	maxQuestionLen = 1000
)

var (
	qMarkerRe       = regexp.MustCompile(`(?i)\bQ\s*\.?\s*(\d{1,3})\s*[.):\-]`)
	numberedLineRe  = regexp.MustCompile(`(?m)^\s*(\d{1,3})[.)]\s+(.+)$`)
	commandVerbRe   = regexp.MustCompile(`(?is)\b(?:explain|describe|define|discuss|compare|contrast|analyze|analyse|evaluate|derive|prove|show|state|calculate|compute|solve|find|determine)\b.{10,700}?[.?]`)
	interrogativeRe = regexp.MustCompile(`(?is)\b(?:what|how|why|when|where|which|who)\s+(?:is|are|was|were|do|does|did|can|could|will|would|should)\b.{5,500}?\?`)
	referenceRe     = regexp.MustCompile(`(?is)\bwith\s+(?:respect|reference|regard)\s+to\b.{10,500}?[.?]`)

	pageNumberRe = regexp.MustCompile(`(?i)\bpage\s+\d+\b`)
	pageOfRe     = regexp.MustCompile(`(?i)\b\d+\s+of\s+\d+\b`)
	marksRe      = regexp.MustCompile(`(?i)[\[(]\s*\d+\s*(?:marks?|points?)\s*[\])]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)

	hasWordRe     = regexp.MustCompile(`[a-zA-Z]{3,}`)
	captionRe     = regexp.MustCompile(`(?i)^(?:page|figure|table|diagram|image)\s*\d`)
	headerFieldRe = regexp.MustCompile(`(?i)^(?:time|duration|total\s+marks)\s*:`)
	preambleRe    = regexp.MustCompile(`(?i)^(?:instructions?|note|guidelines?)\s*:`)
	institutionRe = regexp.MustCompile(`(?i)^(?:university|college|department)\b`)

	paperYearRe  = regexp.MustCompile(`\b(20\d{2}|19\d{2})\b`)
	semesterRe   = regexp.MustCompile(`(?i)\b(?:semester|sem|term)\b\s*[:\-]?\s*(\d{1,2}|[IVX]+)\b`)
	courseCodeRe = regexp.MustCompile(`\b([A-Z]{2,4}\s*\d{3,4})\b`)
)

// subjectIndicators maps a subject label to keywords whose presence in
// a paper votes for that subject.
var subjectIndicators = map[string][]string{
	"mathematics":      {"equation", "integral", "derivative", "matrix", "theorem", "polynomial", "probability"},
	"physics":          {"velocity", "acceleration", "momentum", "quantum", "thermodynamics", "voltage", "magnetic"},
	"chemistry":        {"molecule", "reaction", "compound", "acid", "titration", "organic", "electron"},
	"engineering":      {"machining", "milling", "lathe", "stress", "strain", "tolerance", "gear", "welding"},
	"computer_science": {"algorithm", "database", "compiler", "network", "recursion", "operating system", "data structure"},
	"biology":          {"cell", "enzyme", "photosynthesis", "dna", "organism", "protein", "mitosis"},
	"economics":        {"demand", "supply", "inflation", "gdp", "market", "elasticity", "monetary"},
	"management":       {"leadership", "organization", "strategy", "stakeholder", "motivation", "planning"},
}

// QuestionExtractor recovers questions from raw question-paper text.
// Strategies run in confidence order; later matches that duplicate an
// earlier question are dropped.
type QuestionExtractor struct{}

// NewQuestionExtractor creates an extractor.
func NewQuestionExtractor() *QuestionExtractor {
	return &QuestionExtractor{}
}

// Extract returns the questions found in the text, deduplicated and in
// the order each was first seen.
func (e *QuestionExtractor) Extract(text string) []domain.ExtractedQuestion {
	var questions []domain.ExtractedQuestion
	seen := make(map[string]struct{})

	add := func(raw string, number int, method string, confidence float64) {
		q := cleanQuestionText(raw)
		if !validQuestion(q) {
			return
		}
		key := dedupeKey(q)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		questions = append(questions, domain.ExtractedQuestion{
			Text:       q,
			Number:     number,
			Method:     method,
			Confidence: confidence,
		})
	}

	for _, q := range extractQMarkers(text) {
		add(q.Text, q.Number, methodQMarker, 0.95)
	}
	for _, m := range numberedLineRe.FindAllStringSubmatch(text, -1) {
		number, _ := strconv.Atoi(m[1])
		add(m[2], number, methodNumberedLine, 0.85)
	}
	for _, m := range interrogativeRe.FindAllString(text, -1) {
		add(m, 0, methodInterrogative, 0.75)
	}
	for _, m := range commandVerbRe.FindAllString(text, -1) {
		add(m, 0, methodCommandVerb, 0.7)
	}
	for _, m := range referenceRe.FindAllString(text, -1) {
		add(m, 0, methodReference, 0.6)
	}

	return questions
}

// extractQMarkers slices the text between "Q1.", "Q 2)" style markers.
// The body of each question runs from its marker to the next one.
func extractQMarkers(text string) []domain.ExtractedQuestion {
	locs := qMarkerRe.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	questions := make([]domain.ExtractedQuestion, 0, len(locs))
	for i, loc := range locs {
		number, _ := strconv.Atoi(text[loc[2]:loc[3]])
		start := loc[1]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := text[start:end]
		if len(body) > maxQuestionLen {
			body = body[:maxQuestionLen]
		}
		questions = append(questions, domain.ExtractedQuestion{Text: body, Number: number})
	}
	return questions
}

// cleanQuestionText collapses whitespace and strips page markers and
// mark allocations that leak into extracted text.
func cleanQuestionText(text string) string {
	text = pageNumberRe.ReplaceAllString(text, " ")
	text = pageOfRe.ReplaceAllString(text, " ")
	text = marksRe.ReplaceAllString(text, " ")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// validQuestion rejects captions, header fields, and other fragments
// that match a strategy without being questions.
func validQuestion(text string) bool {
	if len(text) <= minQuestionLen || len(text) >= maxQuestionLen {
		return false
	}
	if !hasWordRe.MatchString(text) {
		return false
	}
	if captionRe.MatchString(text) || headerFieldRe.MatchString(text) ||
		preambleRe.MatchString(text) || institutionRe.MatchString(text) {
		return false
	}
	return true
}

func dedupeKey(text string) string {
	return spaceRunRe.ReplaceAllString(strings.ToLower(text), " ")
}

// detectSubject scores the text against each subject's keyword list and
// returns the top subject, or "" when no subject scores at least 2.
func detectSubject(text string) string {
	lower := strings.ToLower(text)
	best := ""
	bestScore := 0
	subjects := make([]string, 0, len(subjectIndicators))
	for subject := range subjectIndicators {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	for _, subject := range subjects {
		score := 0
		for _, keyword := range subjectIndicators[subject] {
			score += strings.Count(lower, keyword)
		}
		if score > bestScore {
			best = subject
			bestScore = score
		}
	}
	if bestScore < 2 {
		return ""
	}
	return best
}

// extractPaperMetadata recognizes year, semester, and course code from
// the filename and the opening of the paper.
func extractPaperMetadata(fileName, text string) map[string]string {
	const headLen = 500
	head := text
	if len(head) > headLen {
		head = head[:headLen]
	}
	haystack := fileName + " " + head

	meta := make(map[string]string)
	if m := paperYearRe.FindStringSubmatch(haystack); m != nil {
		meta["year"] = m[1]
	}
	if m := semesterRe.FindStringSubmatch(haystack); m != nil {
		meta["semester"] = m[1]
	}
	if m := courseCodeRe.FindStringSubmatch(haystack); m != nil {
		meta["course_code"] = spaceRunRe.ReplaceAllString(m[1], "")
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
