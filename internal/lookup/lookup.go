// Package lookup resolves what a person typed (an id, an id prefix, a name
// or a rough title) to a task, list or tag.
package lookup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"

	apierrors "github.com/kutbudev/duedeck/internal/errors"
	"github.com/kutbudev/duedeck/pkg/models"
)

// ErrRefRequired is returned for an empty task reference.
var ErrRefRequired = errors.New("task reference is required (id, id prefix or title)")

// MinPrefix is the shortest id prefix treated as an id rather than a title.
const MinPrefix = 4

// Task picks one task for ref. Id prefixes win over exact titles, which
// win over fuzzy matches. A fuzzy match must score strictly better than the
// runner-up.
func Task(tasks []models.Task, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, ErrRefRequired
	}

	if len(ref) >= MinPrefix && isHex(ref) {
		var hits []models.Task
		for _, t := range tasks {
			if strings.HasPrefix(t.ID.String(), strings.ToLower(ref)) {
				hits = append(hits, t)
			}
		}
		if len(hits) == 1 {
			return hits[0], nil
		}
		if len(hits) > 1 {
			return models.Task{}, ambiguous(ref, titles(hits))
		}
	}

	var exact []models.Task
	for _, t := range tasks {
		if strings.EqualFold(strings.TrimSpace(t.Title), ref) {
			exact = append(exact, t)
		}
	}
	if len(exact) == 1 {
		return exact[0], nil
	}
	if len(exact) > 1 {
		return models.Task{}, ambiguous(ref, titles(exact))
	}

	matches := fuzzy.FindFrom(ref, taskSource(tasks))
	switch {
	case len(matches) == 0:
		return models.Task{}, fmt.Errorf("%w: no task matches %q", apierrors.ErrNotFound, ref)
	case len(matches) == 1 || matches[0].Score > matches[1].Score:
		return tasks[matches[0].Index], nil
	}
	var names []string
	for _, m := range matches {
		if m.Score == matches[0].Score {
			names = append(names, m.Str)
		}
	}
	return models.Task{}, ambiguous(ref, names)
}

// taskSource lets fuzzy search task titles.
type taskSource []models.Task

func (s taskSource) String(i int) string { return s[i].Title }
func (s taskSource) Len() int            { return len(s) }

// List finds a list by id, id prefix or case-insensitive name.
func List(lists []models.List, ref string) (models.List, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.List{}, errors.New("list is required")
	}
	var hits []models.List
	for _, l := range lists {
		if l.ID.String() == strings.ToLower(ref) || strings.EqualFold(l.Name, ref) {
			return l, nil
		}
		if len(ref) >= MinPrefix && strings.HasPrefix(l.ID.String(), strings.ToLower(ref)) {
			hits = append(hits, l)
		}
	}
	if len(hits) == 1 {
		return hits[0], nil
	}
	if len(hits) > 1 {
		names := make([]string, 0, len(hits))
		for _, l := range hits {
			names = append(names, l.Name)
		}
		return models.List{}, ambiguous(ref, names)
	}
	return models.List{}, fmt.Errorf("%w: no list matches %q", apierrors.ErrNotFound, ref)
}

// Tag finds a tag by id, id prefix or case-insensitive name.
func Tag(tags []models.Tag, ref string) (models.Tag, error) {
	ref = strings.TrimSpace(ref)
	for _, t := range tags {
		if t.ID.String() == strings.ToLower(ref) || strings.EqualFold(t.Name, ref) {
			return t, nil
		}
	}
	var hits []models.Tag
	for _, t := range tags {
		if len(ref) >= MinPrefix && strings.HasPrefix(t.ID.String(), strings.ToLower(ref)) {
			hits = append(hits, t)
		}
	}
	if len(hits) == 1 {
		return hits[0], nil
	}
	return models.Tag{}, fmt.Errorf("%w: no single tag matches %q", apierrors.ErrNotFound, ref)
}

// TagIDs resolves tag references. Each value may hold several, comma
// separated.
func TagIDs(tags []models.Tag, refs []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, raw := range refs {
		for _, ref := range strings.Split(raw, ",") {
			if strings.TrimSpace(ref) == "" {
				continue
			}
			tag, err := Tag(tags, ref)
			if err != nil {
				return nil, err
			}
			ids = append(ids, tag.ID)
		}
	}
	return ids, nil
}

func ambiguous(ref string, candidates []string) error {
	return fmt.Errorf("%q is ambiguous, it matches: %s", ref, strings.Join(candidates, ", "))
}

func titles(tasks []models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Title)
	}
	return out
}

func isHex(s string) bool {
	for _, r := range strings.ToLower(s) {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') && r != '-' {
			return false
		}
	}
	return true
}
