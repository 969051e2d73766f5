package mcp

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/pkg/models"
)

// SimilarityThreshold is the minimum score for an open task to be reported
// as a likely duplicate of a new one.
const SimilarityThreshold = 0.6

// SimilarTask is an open task whose title resembles a new task's title.
type SimilarTask struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Similarity float64   `json:"similarity"`
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// tokenize splits text into lowercase words, removing punctuation
func tokenize(text string) map[string]struct{} {
	text = nonWord.ReplaceAllString(strings.ToLower(text), " ")

	words := make(map[string]struct{})
	for _, word := range strings.Fields(text) {
		if len([]rune(word)) > 1 { // Skip single-character words
			words[word] = struct{}{}
		}
	}
	return words
}

// JaccardSimilarity calculates the Jaccard similarity coefficient between two texts
// Returns a value between 0 (no overlap) and 1 (identical)
func JaccardSimilarity(a, b string) float64 {
	setA := tokenize(a)
	setB := tokenize(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	// |A| + |B| - |A ∩ B|
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// similarOpenTasks returns the open tasks whose titles score at least
// threshold against title, best match first.
func similarOpenTasks(tasks []models.Task, title string, threshold float64) []SimilarTask {
	var similar []SimilarTask
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		if score := JaccardSimilarity(title, t.Title); score >= threshold {
			similar = append(similar, SimilarTask{ID: t.ID, Title: t.Title, Similarity: score})
		}
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})
	return similar
}
