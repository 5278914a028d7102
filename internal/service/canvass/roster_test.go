package canvass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func bacMembers() []models.Signatory {
	return []models.Signatory{
		{Name: "Ana Reyes", Role: "Chairperson"},
		{Name: "Ben Cruz", Role: "Vice Chairperson"},
		{Name: "Carla Santos", Role: "Member"},
	}
}

func TestRoster_CompleteOnlyAfterLastSignature(t *testing.T) {
	r := NewRoster(bacMembers()...)

	for i := 0; i < r.Len(); i++ {
		assert.False(t, r.IsComplete(), "complete after %d of %d signatures", i, r.Len())
		require.NoError(t, r.Sign(i))
	}
	assert.True(t, r.IsComplete())
}

func TestRoster_ProperSubsetIsIncomplete(t *testing.T) {
	r := NewRoster(bacMembers()...)
	require.NoError(t, r.Sign(0))
	require.NoError(t, r.Sign(2))

	assert.False(t, r.IsComplete())
}

func TestRoster_SignStampsLocalTime(t *testing.T) {
	at := time.Date(2026, 3, 9, 14, 5, 0, 0, time.Local)
	r := NewRoster(bacMembers()...)
	r.now = fixedClock(at)

	require.NoError(t, r.Sign(1))

	entries := r.Entries()
	assert.True(t, entries[1].Signed)
	assert.Equal(t, "03/09/2026 2:05 PM", entries[1].SignedAt)
	assert.False(t, entries[0].Signed)
}

func TestRoster_ResignOverwritesTimestamp(t *testing.T) {
	r := NewRoster(bacMembers()...)
	r.now = fixedClock(time.Date(2026, 3, 9, 9, 0, 0, 0, time.Local))
	require.NoError(t, r.Sign(0))

	r.now = fixedClock(time.Date(2026, 3, 10, 10, 30, 0, 0, time.Local))
	require.NoError(t, r.Sign(0))

	assert.Equal(t, "03/10/2026 10:30 AM", r.Entries()[0].SignedAt)
}

func TestRoster_SignOutOfRange(t *testing.T) {
	r := NewRoster(bacMembers()...)

	assert.ErrorIs(t, r.Sign(-1), ErrIndexOutOfRange)
	assert.ErrorIs(t, r.Sign(3), ErrIndexOutOfRange)
}

func TestRoster_SignAs(t *testing.T) {
	r := NewRoster(bacMembers()...)

	assert.ErrorIs(t, r.SignAs(0, "Ben Cruz"), ErrSignerMismatch)
	assert.False(t, r.Entries()[0].Signed)

	require.NoError(t, r.SignAs(0, " ana reyes "))
	assert.True(t, r.Entries()[0].Signed)
}

func TestRoster_IgnoresIncomingSignedState(t *testing.T) {
	r := NewRoster(models.Signatory{Name: "Ana Reyes", Signed: true, SignedAt: "yesterday"})

	assert.False(t, r.IsComplete())
	assert.Empty(t, r.Entries()[0].SignedAt)
}

func TestRoster_EntriesIsACopy(t *testing.T) {
	r := NewRoster(bacMembers()...)
	entries := r.Entries()
	entries[0].Signed = true

	assert.False(t, r.IsComplete())
	assert.False(t, r.Entries()[0].Signed)
}
