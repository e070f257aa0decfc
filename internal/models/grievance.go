package models

import (
	"database/sql"
	"time"
)

// Priority is the urgency the submitter attaches to a grievance.
type Priority string

// Priority constants
const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists every priority, most severe first.
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities by severity: Critical is 1, Low is 4, unknown is 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 1
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 3
	case PriorityLow:
		return 4
	default:
		return 0
	}
}

// Status is the resolution state of a grievance.
type Status string

// Status constants
const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a grievance in this status carries a resolution date.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// Grievance is a single complaint and its resolution state. Dates are
// stored as unix milliseconds and converted by the repository.
type Grievance struct {
	ID                int64          `db:"id"`
	GrievanceType     string         `db:"grievance_type"`
	Priority          Priority       `db:"priority"`
	Description       string         `db:"description"`
	AdditionalContext sql.NullString `db:"additional_context"`
	SubmittedBy       string         `db:"submitted_by"`
	DateSubmitted     time.Time      `db:"-"`
	Status            Status         `db:"status"`
	HusbandNotes      sql.NullString `db:"husband_notes"`
	DateResolved      sql.NullTime   `db:"-"`
}

// Context returns the optional additional context, or "" when unset.
func (g *Grievance) Context() string {
	if g.AdditionalContext.Valid {
		return g.AdditionalContext.String
	}
	return ""
}

// Notes returns the husband's notes, or "" when unset.
func (g *Grievance) Notes() string {
	if g.HusbandNotes.Valid {
		return g.HusbandNotes.String
	}
	return ""
}

// ResolvedAt returns the resolution time, or nil while unresolved.
func (g *Grievance) ResolvedAt() *time.Time {
	if !g.DateResolved.Valid {
		return nil
	}
	t := g.DateResolved.Time
	return &t
}

// GrievanceView is the JSON shape served to the portals.
type GrievanceView struct {
	ID                int64      `json:"id"`
	GrievanceType     string     `json:"grievance_type"`
	Priority          Priority   `json:"priority"`
	Description       string     `json:"description"`
	AdditionalContext string     `json:"additional_context,omitempty"`
	SubmittedBy       string     `json:"submitted_by"`
	DateSubmitted     time.Time  `json:"date_submitted"`
	Status            Status     `json:"status"`
	HusbandNotes      string     `json:"husband_notes,omitempty"`
	DateResolved      *time.Time `json:"date_resolved"`
}

// View flattens nullable columns for rendering.
func (g *Grievance) View() GrievanceView {
	return GrievanceView{
		ID:                g.ID,
		GrievanceType:     g.GrievanceType,
		Priority:          g.Priority,
		Description:       g.Description,
		AdditionalContext: g.Context(),
		SubmittedBy:       g.SubmittedBy,
		DateSubmitted:     g.DateSubmitted,
		Status:            g.Status,
		HusbandNotes:      g.Notes(),
		DateResolved:      g.ResolvedAt(),
	}
}

// StatusCounts holds how many grievances sit in each status.
type StatusCounts map[Status]int

// Total sums all counts.
func (c StatusCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}
