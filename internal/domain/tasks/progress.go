package tasks

import (
	"math"
	"strings"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further progress is expected.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ParseStatus treats a missing status as in progress, matching records that
// were initialized but never advanced.
func ParseStatus(raw string) Status {
	s := Status(strings.TrimSpace(raw))
	if s == "" {
		return StatusInProgress
	}
	return s
}

// Progress is the durable record kept per task identifier.
type Progress struct {
	TaskID    string `json:"task_id"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Status    Status `json:"status"`
	Message   string `json:"message,omitempty"`
}

// Fraction is completed/total in [0, 1]. A task with nothing to do counts as done.
func (p Progress) Fraction() float64 {
	return Fraction(p.Completed, p.Total)
}

func Fraction(completed, total int) float64 {
	if total <= 0 {
		return 1.0
	}
	f := float64(completed) / float64(total)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Event is the ephemeral projection pushed to live observers.
type Event struct {
	Progress float64 `json:"progress"`
	Status   Status  `json:"status"`
	Message  string  `json:"message"`
}

func (p Progress) Event() Event {
	return Event{Progress: p.Fraction(), Status: p.Status, Message: p.Message}
}
