package canvass

import (
	"fmt"
	"strings"
	"time"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

// Roster is a fixed, ordered list of signatories gating an approval step.
type Roster struct {
	entries []models.Signatory
	now     func() time.Time
}

// NewRoster copies the given signatories into a roster, clearing any signed state.
func NewRoster(signatories ...models.Signatory) *Roster {
	entries := make([]models.Signatory, len(signatories))
	for i, s := range signatories {
		entries[i] = models.Signatory{Name: s.Name, Role: s.Role}
	}
	return &Roster{entries: entries, now: time.Now}
}

// Sign marks the entry at index as signed and stamps the local time.
// Signing twice only refreshes the timestamp. The caller's identity is not checked.
func (r *Roster) Sign(index int) error {
	if index < 0 || index >= len(r.entries) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(r.entries))
	}

	r.entries[index].Signed = true
	r.entries[index].SignedAt = r.now().Local().Format(models.SignatureLayout)
	return nil
}

// SignAs signs on behalf of signer, rejecting names that do not match the entry.
func (r *Roster) SignAs(index int, signer string) error {
	if index < 0 || index >= len(r.entries) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(r.entries))
	}
	if !strings.EqualFold(strings.TrimSpace(signer), strings.TrimSpace(r.entries[index].Name)) {
		return fmt.Errorf("%w: %q cannot sign for %q", ErrSignerMismatch, signer, r.entries[index].Name)
	}
	return r.Sign(index)
}

// IsComplete reports whether every entry has signed.
func (r *Roster) IsComplete() bool {
	for _, e := range r.entries {
		if !e.Signed {
			return false
		}
	}
	return true
}

// Len returns the number of roster entries.
func (r *Roster) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the roster.
func (r *Roster) Entries() []models.Signatory {
	out := make([]models.Signatory, len(r.entries))
	copy(out, r.entries)
	return out
}
