package ai

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/campusvoice/backend/internal/models"
)

// lexiconEntry binds a category to its trigger substrings. Order matters:
// when two categories tie, the first one in this list wins.
type lexiconEntry struct {
	category models.Category
	keywords []string
}

// Other carries no keywords and is the fallback when nothing matches.
var lexicon = []lexiconEntry{
	{models.CategoryIT, []string{"wifi", "internet", "computer", "laptop", "software", "network", "email", "login", "password", "server", "printer", "technical"}},
	{models.CategoryAcademic, []string{"exam", "grade", "marks", "professor", "lecture", "course", "assignment", "attendance", "curriculum", "syllabus", "class", "teacher"}},
	{models.CategoryInfrastructure, []string{"building", "classroom", "projector", "chair", "desk", "fan", "light", "electricity", "water", "toilet", "elevator", "parking"}},
	{models.CategoryHostel, []string{"hostel", "room", "ac", "air conditioning", "bed", "mattress", "roommate", "warden", "mess", "food", "laundry", "accommodation"}},
	{models.CategoryLibrary, []string{"library", "book", "borrow", "fine", "journal", "research paper", "study room", "reading", "librarian"}},
	{models.CategoryTransport, []string{"bus", "transport", "route", "timing", "schedule", "driver", "vehicle", "shuttle", "pickup", "drop"}},
	{models.CategoryFinance, []string{"fee", "scholarship", "payment", "refund", "amount", "bank", "transaction", "finance", "money", "dues", "receipt"}},
	{models.CategoryAdministration, []string{"certificate", "document", "office", "registration", "id card", "admission", "form", "application", "verification"}},
}

var urgentKeywords = []string{"urgent", "emergency", "immediately", "critical", "broken", "not working", "failed", "cannot access"}

var mediumKeywords = []string{"issue", "problem", "slow", "delayed", "inconvenient", "difficulty"}

// Classify scores text against the lexicon and picks the dominant category.
// Each keyword contributes at most one point per category regardless of how
// often it repeats. A category must score strictly higher than the running
// maximum to win, so ties resolve to the earlier lexicon entry.
func Classify(text string) models.Classification {
	lower := strings.ToLower(text)

	maxCategory := models.CategoryOther
	maxScore := 0
	total := 0
	for _, entry := range lexicon {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		total += score
		if score > maxScore {
			maxScore = score
			maxCategory = entry.category
		}
	}

	// No signal at all reads as a flat 0.5; otherwise confidence scales with
	// how dominant the winner is relative to all keyword hits, capped at 0.95.
	confidence := 0.5
	if total > 0 {
		confidence = math.Min(0.95, 0.6+float64(maxScore)/float64(total)*0.35)
	}

	return models.Classification{
		Category:   maxCategory,
		Confidence: math.Round(confidence*100) / 100,
	}
}

// DeterminePriority is a decision list, not a score: urgent keywords beat
// medium keywords, and only then do category defaults apply.
func DeterminePriority(text string, category models.Category) models.PriorityLevel {
	lower := strings.ToLower(text)

	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityHigh
		}
	}
	for _, kw := range mediumKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityMedium
		}
	}

	if category == models.CategoryFinance || category == models.CategoryAcademic {
		return models.PriorityMedium
	}
	return models.PriorityLow
}

type KeywordClassifier struct{}

func (KeywordClassifier) ClassifyGrievance(ctx context.Context, text string) (models.Classification, int64, error) {
	start := time.Now()
	result := Classify(text)
	return result, time.Since(start).Milliseconds(), nil
}
