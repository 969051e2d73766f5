package due

import (
	"testing"
	"time"
)

type item struct {
	id  int
	due time.Time
}

func (i item) DueAt() time.Time { return i.due }

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBucket(t *testing.T) {
	now := at("2024-03-15T10:00:00")

	tests := []struct {
		name string
		due  time.Time
		want Kind
	}{
		{"early today", at("2024-03-15T00:30:00"), Today},
		{"first second of today", at("2024-03-15T00:00:01"), Today},
		{"last second of today", at("2024-03-15T23:59:59"), Today},
		{"last instant of today", EndOfDay(now), Today},
		{"exactly now", now, Today},
		{"earlier today is not overdue", at("2024-03-15T09:59:59"), Today},
		{"late yesterday", at("2024-03-14T23:59:00"), Overdue},
		{"last year", at("2023-03-15T10:00:00"), Overdue},
		{"just after midnight tomorrow", at("2024-03-16T00:00:01"), Upcoming},
		{"midnight tomorrow", at("2024-03-16T00:00:00"), Upcoming},
		{"next month", at("2024-04-01T12:00:00"), Upcoming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bucket(tt.due, now); got != tt.want {
				t.Errorf("Bucket(%v, %v) = %s, want %s", tt.due, now, got, tt.want)
			}
		})
	}
}

func TestBucketUsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, 3, 15, 1, 0, 0, 0, tokyo)
	// 2024-03-14 20:00 UTC is 2024-03-15 05:00 in Tokyo.
	dueAt := time.Date(2024, 3, 14, 20, 0, 0, 0, time.UTC)

	if got := Bucket(dueAt, now); got != Today {
		t.Errorf("Bucket() = %s, want %s", got, Today)
	}
}

func TestClassify(t *testing.T) {
	now := at("2024-03-15T10:00:00")
	items := []item{
		{1, at("2024-03-15T00:30:00")},
		{2, at("2024-03-14T23:59:00")},
		{3, at("2024-03-16T00:00:01")},
		{4, at("2024-03-15T23:59:59")},
		{5, at("2024-01-01T08:00:00")},
		{6, at("2025-01-01T08:00:00")},
	}

	g := Classify(items, now)

	assertIDs(t, "today", g.Today, []int{1, 4})
	assertIDs(t, "overdue", g.Overdue, []int{2, 5})
	assertIDs(t, "upcoming", g.Upcoming, []int{3, 6})

	if g.Len() != len(items) {
		t.Errorf("Len() = %d, want %d", g.Len(), len(items))
	}

	seen := map[int]int{}
	for _, k := range Kinds {
		for _, it := range g.Get(k) {
			seen[it.id]++
		}
	}
	for _, it := range items {
		if seen[it.id] != 1 {
			t.Errorf("item %d appears %d times, want exactly once", it.id, seen[it.id])
		}
	}
}

func TestClassifyEmpty(t *testing.T) {
	g := Classify([]item(nil), time.Now())
	if g.Len() != 0 {
		t.Errorf("Len() = %d, want 0", g.Len())
	}
}

func TestWindowMatchesBucket(t *testing.T) {
	now := at("2024-03-15T10:00:00")
	samples := []time.Time{
		at("2024-03-14T23:59:59"),
		at("2024-03-15T00:00:00"),
		at("2024-03-15T12:00:00"),
		EndOfDay(now),
		at("2024-03-16T00:00:00"),
		at("2024-06-01T00:00:00"),
	}

	for _, s := range samples {
		for _, k := range Kinds {
			from, to := Window(k, now)
			in := (from.IsZero() || !s.Before(from)) && (to.IsZero() || s.Before(to))
			if in != (Bucket(s, now) == k) {
				t.Errorf("Window(%s) contains %v = %v, but Bucket() = %s", k, s, in, Bucket(s, now))
			}
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"today", "TODAY", " Today "} {
		if k, err := ParseKind(s); err != nil || k != Today {
			t.Errorf("ParseKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := ParseKind("tomorrow"); err == nil {
		t.Error("ParseKind(tomorrow) expected error")
	}
	if _, err := ParseKind(""); err == nil {
		t.Error("ParseKind(\"\") expected error")
	}
}

func assertIDs(t *testing.T, name string, got []item, want []int) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d items, want %d", name, len(got), len(want))
	}
	for i := range want {
		if got[i].id != want[i] {
			t.Errorf("%s[%d] = %d, want %d", name, i, got[i].id, want[i])
		}
	}
}
