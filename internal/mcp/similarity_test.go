package mcp

import (
	"testing"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/pkg/models"
)

func TestJaccardSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		minScore float64
		maxScore float64
	}{
		{
			name:     "identical strings",
			a:        "water plants",
			b:        "water plants",
			minScore: 0.99,
			maxScore: 1.0,
		},
		{
			name:     "case and punctuation ignored",
			a:        "Call mom!",
			b:        "call MOM",
			minScore: 0.99,
			maxScore: 1.0,
		},
		{
			name:     "extra word",
			a:        "water plants",
			b:        "water the plants",
			minScore: 0.66,
			maxScore: 0.67,
		},
		{
			name:     "partial overlap",
			a:        "book dentist appointment",
			b:        "cancel dentist",
			minScore: 0.25,
			maxScore: 0.25,
		},
		{
			name:     "non-ascii words",
			a:        "Çiçekleri sula",
			b:        "çiçekleri sula.",
			minScore: 0.99,
			maxScore: 1.0,
		},
		{
			name:     "completely different strings",
			a:        "file taxes",
			b:        "buy groceries",
			minScore: 0.0,
			maxScore: 0.0,
		},
		{
			name:     "empty string handling",
			a:        "",
			b:        "water plants",
			minScore: 0.0,
			maxScore: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := JaccardSimilarity(tt.a, tt.b)
			if score < tt.minScore || score > tt.maxScore {
				t.Errorf("JaccardSimilarity(%q, %q) = %v, want between %v and %v",
					tt.a, tt.b, score, tt.minScore, tt.maxScore)
			}
		})
	}
}

func TestSimilarOpenTasks(t *testing.T) {
	tasks := []models.Task{
		{ID: uuid.New(), Title: "water the plants"},
		{ID: uuid.New(), Title: "water plants", Completed: true},
		{ID: uuid.New(), Title: "water plants on the balcony"},
		{ID: uuid.New(), Title: "file taxes"},
	}

	similar := similarOpenTasks(tasks, "Water plants", SimilarityThreshold)
	if len(similar) != 1 {
		t.Fatalf("similar = %+v, want only the open close match", similar)
	}
	if similar[0].ID != tasks[0].ID {
		t.Errorf("match = %q, want %q", similar[0].Title, tasks[0].Title)
	}

	similar = similarOpenTasks(tasks, "water plants", 0.4)
	if len(similar) != 2 || similar[0].Similarity < similar[1].Similarity {
		t.Errorf("similar = %+v, want two matches best first", similar)
	}

	if got := similarOpenTasks(tasks, "buy groceries", SimilarityThreshold); len(got) != 0 {
		t.Errorf("similar = %+v, want none", got)
	}
}

func TestTokenize(t *testing.T) {
	result := tokenize("Call Mom, then a walk!")

	for _, want := range []string{"call", "mom", "then", "walk"} {
		if _, ok := result[want]; !ok {
			t.Errorf("Expected %q in tokenized result", want)
		}
	}
	if _, ok := result["a"]; ok {
		t.Error("Should not contain single-character word 'a'")
	}
}
