package canvass

import (
	"fmt"
	"time"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

// ReturnWindow is the advisory period a division has to return its canvass.
// It is displayed and swept for reminders but never blocks a transition.
const ReturnWindow = 7 * 24 * time.Hour

// DivisionTracker follows canvass forms released to divisions.
type DivisionTracker struct {
	assignments []models.DivisionAssignment
	now         func() time.Time
}

// DivisionSpec names a division and its canvasser.
type DivisionSpec struct {
	Division  string
	Canvasser string
}

// NewDivisionTracker starts every division as pending.
func NewDivisionTracker(specs ...DivisionSpec) *DivisionTracker {
	assignments := make([]models.DivisionAssignment, len(specs))
	for i, spec := range specs {
		assignments[i] = models.DivisionAssignment{
			Division:  spec.Division,
			Canvasser: spec.Canvasser,
			Status:    models.DivisionPending,
		}
	}
	return &DivisionTracker{assignments: assignments, now: time.Now}
}

// Release marks the division's canvass as handed out and sets its due date.
func (t *DivisionTracker) Release(division string) error {
	a, err := t.find(division)
	if err != nil {
		return err
	}

	now := t.now()
	due := now.Add(ReturnWindow)
	a.Status = models.DivisionReleased
	a.ReleasedAt = &now
	a.DueAt = &due
	return nil
}

// MarkReturned marks the division's canvass as returned. It is allowed even if
// the division was never released.
func (t *DivisionTracker) MarkReturned(division string) error {
	a, err := t.find(division)
	if err != nil {
		return err
	}

	now := t.now()
	a.Status = models.DivisionReturned
	a.ReturnedAt = &now
	return nil
}

// AllReleased reports whether no division is still pending.
func (t *DivisionTracker) AllReleased() bool {
	for _, a := range t.assignments {
		if a.Status == models.DivisionPending {
			return false
		}
	}
	return true
}

// AllReturned reports whether every division has returned its canvass.
func (t *DivisionTracker) AllReturned() bool {
	for _, a := range t.assignments {
		if a.Status != models.DivisionReturned {
			return false
		}
	}
	return true
}

// Overdue lists released divisions whose due date is before now.
func (t *DivisionTracker) Overdue(now time.Time) []models.DivisionAssignment {
	var out []models.DivisionAssignment
	for _, a := range t.assignments {
		if a.Status != models.DivisionReleased || a.DueAt == nil {
			continue
		}
		if now.After(*a.DueAt) {
			out = append(out, a)
		}
	}
	return out
}

// Assignments returns a copy of every division assignment.
func (t *DivisionTracker) Assignments() []models.DivisionAssignment {
	out := make([]models.DivisionAssignment, len(t.assignments))
	copy(out, t.assignments)
	return out
}

func (t *DivisionTracker) find(division string) (*models.DivisionAssignment, error) {
	for i := range t.assignments {
		if t.assignments[i].Division == division {
			return &t.assignments[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDivision, division)
}
