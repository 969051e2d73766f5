// Package due groups tasks into today, overdue and upcoming buckets relative
// to a reference instant.
package due

import (
	"fmt"
	"strings"
	"time"
)

// Kind is a due-date bucket.
type Kind string

const (
	Today    Kind = "Today"
	Overdue  Kind = "Overdue"
	Upcoming Kind = "Upcoming"
)

// Kinds lists the buckets in display order.
var Kinds = []Kind{Today, Overdue, Upcoming}

// ParseKind accepts a bucket name in any case. The empty string is not a
// bucket and returns an error.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(strings.TrimSpace(s), string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown due bucket %q (want Today, Upcoming or Overdue)", s)
}

// Dated is anything with a due timestamp.
type Dated interface {
	DueAt() time.Time
}

// Groups holds the result of Classify. Each bucket keeps input order.
type Groups[T Dated] struct {
	Today    []T `json:"today"`
	Overdue  []T `json:"overdue"`
	Upcoming []T `json:"upcoming"`
}

// Len is the total number of items across all buckets.
func (g Groups[T]) Len() int {
	return len(g.Today) + len(g.Overdue) + len(g.Upcoming)
}

// Get returns the bucket for k.
func (g Groups[T]) Get(k Kind) []T {
	switch k {
	case Today:
		return g.Today
	case Overdue:
		return g.Overdue
	case Upcoming:
		return g.Upcoming
	}
	return nil
}

// Bucket classifies a single due timestamp against now. The same calendar day
// check (in now's location) runs first, then past, then future; changing the
// order changes the result around midnight.
func Bucket(dueAt, now time.Time) Kind {
	switch {
	case SameDay(dueAt, now):
		return Today
	case dueAt.Before(now):
		return Overdue
	default:
		return Upcoming
	}
}

// Classify partitions items into buckets relative to now.
func Classify[T Dated](items []T, now time.Time) Groups[T] {
	var g Groups[T]
	for _, item := range items {
		switch Bucket(item.DueAt(), now) {
		case Today:
			g.Today = append(g.Today, item)
		case Overdue:
			g.Overdue = append(g.Overdue, item)
		default:
			g.Upcoming = append(g.Upcoming, item)
		}
	}
	return g
}

// SameDay reports whether a falls on the same calendar day as b, using b's
// location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay is midnight at the beginning of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay is the last representable instant of t's day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Window returns the half-open range [from, to) matching bucket k. A zero
// from or to means the range is unbounded on that side.
//
//	Today:    [start of today, start of tomorrow)
//	Overdue:  (-inf, start of today)
//	Upcoming: [start of tomorrow, +inf)
func Window(k Kind, now time.Time) (from, to time.Time) {
	start := StartOfDay(now)
	next := start.AddDate(0, 0, 1)
	switch k {
	case Today:
		return start, next
	case Overdue:
		return time.Time{}, start
	case Upcoming:
		return next, time.Time{}
	}
	return time.Time{}, time.Time{}
}
