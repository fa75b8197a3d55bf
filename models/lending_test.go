package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueDateFor(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), DueDateFor(issued))
}

func TestOverdueDays(t *testing.T) {
	due := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"two days early", due.Add(-48 * time.Hour), 0},
		{"exactly on due", due, 0},
		{"one hour late counts as a day", due.Add(time.Hour), 1},
		{"exactly one day late", due.Add(24 * time.Hour), 1},
		{"one day and a minute late", due.Add(24*time.Hour + time.Minute), 2},
		{"six days late", due.Add(6 * 24 * time.Hour), 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueDays(due, tt.at))
		})
	}
}

func TestFineFor(t *testing.T) {
	due := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, FineFor(due, due.Add(-time.Hour)))
	assert.Equal(t, 6*FinePerDay, FineFor(due, due.Add(6*24*time.Hour)))
	assert.GreaterOrEqual(t, FineFor(due, due.Add(-100*24*time.Hour)), 0)
}
