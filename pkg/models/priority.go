package models

import (
	"fmt"
	"strings"
)

// Priority represents the priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// ParsePriority converts user input to a Priority. It accepts the full names
// in any case as well as the single-letter forms (L, M, H, U). An empty string
// yields the default, low.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "low", "l":
		return PriorityLow, nil
	case "medium", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	case "urgent", "u":
		return PriorityUrgent, nil
	default:
		return "", fmt.Errorf("unknown priority %q (want low, medium, high or urgent)", s)
	}
}

// Valid reports whether p is one of the closed set of priorities.
func (p Priority) Valid() bool {
	for _, known := range Priorities {
		if p == known {
			return true
		}
	}
	return false
}

// Color returns the display color for the priority.
func (p Priority) Color() string {
	switch p {
	case PriorityMedium:
		return "#eeff00" // yellow
	case PriorityHigh:
		return "#ffb300" // orange
	case PriorityUrgent:
		return "#de2e28" // red
	default:
		return "#188c27" // green
	}
}

// Rank orders priorities from 0 (low) to 3 (urgent). Unknown values rank
// below low.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return -1
}
