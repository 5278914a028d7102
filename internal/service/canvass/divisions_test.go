package canvass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

func divisionSpecs() []DivisionSpec {
	return []DivisionSpec{
		{Division: "Administrative", Canvasser: "Dina"},
		{Division: "Operations", Canvasser: "Eli"},
	}
}

func TestDivisionTracker_ReleaseThenReturn(t *testing.T) {
	released := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	tr := NewDivisionTracker(divisionSpecs()...)
	tr.now = fixedClock(released)

	require.NoError(t, tr.Release("Administrative"))
	a := tr.Assignments()[0]
	assert.Equal(t, models.DivisionReleased, a.Status)
	require.NotNil(t, a.ReleasedAt)
	require.NotNil(t, a.DueAt)
	assert.Equal(t, released.Add(ReturnWindow), *a.DueAt)

	tr.now = fixedClock(released.Add(48 * time.Hour))
	require.NoError(t, tr.MarkReturned("Administrative"))
	a = tr.Assignments()[0]
	assert.Equal(t, models.DivisionReturned, a.Status)
	require.NotNil(t, a.ReturnedAt)
	assert.Equal(t, released.Add(48*time.Hour), *a.ReturnedAt)
}

func TestDivisionTracker_ReturnWithoutRelease(t *testing.T) {
	tr := NewDivisionTracker(divisionSpecs()...)

	require.NoError(t, tr.MarkReturned("Operations"))

	a := tr.Assignments()[1]
	assert.Equal(t, models.DivisionReturned, a.Status)
	assert.Nil(t, a.ReleasedAt)
}

func TestDivisionTracker_Predicates(t *testing.T) {
	tr := NewDivisionTracker(divisionSpecs()...)
	assert.False(t, tr.AllReleased())
	assert.False(t, tr.AllReturned())

	require.NoError(t, tr.Release("Administrative"))
	assert.False(t, tr.AllReleased())

	require.NoError(t, tr.MarkReturned("Operations"))
	assert.True(t, tr.AllReleased())
	assert.False(t, tr.AllReturned())

	require.NoError(t, tr.MarkReturned("Administrative"))
	assert.True(t, tr.AllReturned())
}

func TestDivisionTracker_UnknownDivision(t *testing.T) {
	tr := NewDivisionTracker(divisionSpecs()...)

	assert.ErrorIs(t, tr.Release("Legal"), ErrUnknownDivision)
	assert.ErrorIs(t, tr.MarkReturned("Legal"), ErrUnknownDivision)
}

func TestDivisionTracker_Overdue(t *testing.T) {
	released := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	tr := NewDivisionTracker(divisionSpecs()...)
	tr.now = fixedClock(released)
	require.NoError(t, tr.Release("Administrative"))
	require.NoError(t, tr.Release("Operations"))
	require.NoError(t, tr.MarkReturned("Operations"))

	assert.Empty(t, tr.Overdue(released.Add(ReturnWindow)))

	overdue := tr.Overdue(released.Add(ReturnWindow + time.Minute))
	require.Len(t, overdue, 1)
	assert.Equal(t, "Administrative", overdue[0].Division)

	// Advisory only: returning late is still accepted.
	require.NoError(t, tr.MarkReturned("Administrative"))
	assert.True(t, tr.AllReturned())
}
