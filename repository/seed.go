package repository

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kutbudev/duedeck/internal/service"
	"github.com/kutbudev/duedeck/pkg/models"
)

// Seed sizes.
const (
	SeedTags  = 5
	SeedLists = 5
	SeedTasks = 40
)

var seedWords = []string{
	"garden", "invoice", "kitchen", "meeting", "plumber", "report", "dentist",
	"laundry", "budget", "bicycle", "passport", "groceries", "roadmap", "review",
	"library", "taxes", "backup", "birthday", "workout", "newsletter", "car",
	"insurance", "podcast", "recipe", "window", "ticket", "letter", "server",
}

// Seed fills store with random tags, lists and tasks. Due dates spread over
// a year around now, so every bucket gets tasks.
func Seed(ctx context.Context, store service.Store, rng *rand.Rand, now time.Time) error {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(now.UnixNano()), 0))
	}

	tagIDs := make([]uuid.UUID, 0, SeedTags)
	for i := 0; i < SeedTags; i++ {
		tag, err := store.CreateTag(ctx, service.TagInput{Name: word(rng), Color: randomColor(rng)})
		if err != nil {
			return fmt.Errorf("seed tag: %w", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	listIDs := make([]uuid.UUID, 0, SeedLists)
	for i := 0; i < SeedLists; i++ {
		list, err := store.CreateList(ctx, service.ListInput{Name: word(rng), Color: randomColor(rng)})
		if err != nil {
			return fmt.Errorf("seed list: %w", err)
		}
		listIDs = append(listIDs, list.ID)
	}

	for i := 0; i < SeedTasks; i++ {
		description := words(rng, 5)
		tags := append([]uuid.UUID(nil), tagIDs...)
		rng.Shuffle(len(tags), func(a, b int) { tags[a], tags[b] = tags[b], tags[a] })

		in := service.TaskInput{
			Title:       word(rng),
			Description: &description,
			Completed:   rng.Float64() < 0.3,
			DueDate:     now.Add(time.Duration(rng.Int64N(int64(365*24*time.Hour))) - 182*24*time.Hour),
			Priority:    models.Priorities[rng.IntN(len(models.Priorities))],
			ListID:      listIDs[rng.IntN(len(listIDs))],
			TagIDs:      tags[:rng.IntN(len(tags)+1)],
		}
		if _, err := store.CreateTask(ctx, in); err != nil {
			return fmt.Errorf("seed task %d: %w", i, err)
		}
	}
	return nil
}

func word(rng *rand.Rand) string {
	return seedWords[rng.IntN(len(seedWords))]
}

func words(rng *rand.Rand, n int) string {
	out := make([]string, n)
	for i := range out {
		out[i] = word(rng)
	}
	return strings.Join(out, " ")
}

func randomColor(rng *rand.Rand) string {
	return fmt.Sprintf("#%02x%02x%02x", rng.IntN(256), rng.IntN(256), rng.IntN(256))
}
