package canvass

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

// Options carries the rosters and divisions a new session starts with.
type Options struct {
	BACMembers          []models.Signatory
	AbstractSignatories []models.Signatory
	Divisions           []DivisionSpec
	Now                 func() time.Time
}

// Session is the in-memory canvassing workflow of one purchase request.
// It is owned by a single caller and is not safe for concurrent use.
type Session struct {
	ID string

	request         models.PurchaseRequest
	canvassRefNo    string
	receivedBy      string
	resolutionNo    string
	procurementMode string
	abstractNo      string

	bac       *Roster
	divisions *DivisionTracker
	ledger    *Ledger
	abstract  *Roster

	reached models.Stage
	viewing models.Stage
	closed  bool
	summary *models.SessionSummary
	now     func() time.Time
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID              string                      `json:"id"`
	Request         models.PurchaseRequest      `json:"request"`
	HighValue       bool                        `json:"high_value"`
	Stage           models.Stage                `json:"stage"`
	Viewing         models.Stage                `json:"viewing"`
	CanAdvance      bool                        `json:"can_advance"`
	Closed          bool                        `json:"closed"`
	CanvassRefNo    string                      `json:"canvass_ref_no"`
	ReceivedBy      string                      `json:"received_by"`
	ResolutionNo    string                      `json:"resolution_no"`
	ProcurementMode string                      `json:"procurement_mode"`
	AbstractNo      string                      `json:"abstract_no"`
	BACRoster       []models.Signatory          `json:"bac_roster"`
	Divisions       []models.DivisionAssignment `json:"divisions"`
	Quotes          []models.SupplierQuote      `json:"quotes"`
	AbstractRoster  []models.Signatory          `json:"abstract_roster"`
	Recommendation  Recommendation              `json:"recommendation"`
}

// NewSession opens a canvassing session at the pr_received stage.
func NewSession(pr models.PurchaseRequest, opts Options) *Session {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	pr.Items = append([]models.LineItem(nil), pr.Items...)
	itemIDs := make([]int, len(pr.Items))
	for i, item := range pr.Items {
		itemIDs[i] = item.ID
	}

	s := &Session{
		ID:        uuid.NewString(),
		request:   pr,
		bac:       NewRoster(opts.BACMembers...),
		divisions: NewDivisionTracker(opts.Divisions...),
		ledger:    NewLedger(itemIDs...),
		abstract:  NewRoster(opts.AbstractSignatories...),
		reached:   models.StagePRReceived,
		viewing:   models.StagePRReceived,
		now:       now,
	}
	s.bac.now = now
	s.abstract.now = now
	s.divisions.now = now
	return s
}

// Request returns the purchase request the session was opened for.
func (s *Session) Request() models.PurchaseRequest {
	return s.request
}

// Stage returns the furthest stage the session has reached.
func (s *Session) Stage() models.Stage {
	return s.reached
}

// Closed reports whether the abstract of awards has been completed.
func (s *Session) Closed() bool {
	return s.closed
}

// AssignCanvassRef sets the canvass reference number.
func (s *Session) AssignCanvassRef(ref string) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.canvassRefNo = strings.TrimSpace(ref)
	return nil
}

// SelectReceiver records who received the purchase request.
func (s *Session) SelectReceiver(name string) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.receivedBy = strings.TrimSpace(name)
	return nil
}

// SetResolution records the BAC resolution number and the procurement mode it adopts.
func (s *Session) SetResolution(resolutionNo, mode string) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.resolutionNo = strings.TrimSpace(resolutionNo)
	s.procurementMode = strings.TrimSpace(mode)
	return nil
}

// SetAbstractNo records the abstract of awards reference number.
func (s *Session) SetAbstractNo(no string) error {
	if s.closed {
		return ErrSessionClosed
	}
	s.abstractNo = strings.TrimSpace(no)
	return nil
}

// SignBAC signs the BAC resolution roster entry at index. A non-empty signer
// must match the entry's name.
func (s *Session) SignBAC(index int, signer string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return sign(s.bac, index, signer)
}

// SignAbstract signs the abstract of awards roster entry at index. A non-empty
// signer must match the entry's name.
func (s *Session) SignAbstract(index int, signer string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return sign(s.abstract, index, signer)
}

func sign(r *Roster, index int, signer string) error {
	if signer == "" {
		return r.Sign(index)
	}
	return r.SignAs(index, signer)
}

// Release hands the canvass form out to a division.
func (s *Session) Release(division string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.divisions.Release(division)
}

// MarkReturned records a division returning its canvass form.
func (s *Session) MarkReturned(division string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.divisions.MarkReturned(division)
}

// UpsertQuote adds or replaces a supplier quote.
func (s *Session) UpsertQuote(q models.SupplierQuote) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.ledger.Upsert(q)
}

// SetPrice records one supplier price for one line item.
func (s *Session) SetPrice(supplierID string, itemID int, raw string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.ledger.SetPrice(supplierID, itemID, raw)
}

// RemoveQuote drops a supplier quote.
func (s *Session) RemoveQuote(supplierID string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.ledger.Remove(supplierID)
}

// Overdue lists divisions past their advisory return window.
func (s *Session) Overdue(now time.Time) []models.DivisionAssignment {
	return s.divisions.Overdue(now)
}

// StageComplete evaluates the completion predicate of a stage.
func (s *Session) StageComplete(stage models.Stage) bool {
	switch stage {
	case models.StagePRReceived:
		return s.canvassRefNo != "" && s.receivedBy != ""
	case models.StageBACResolution:
		return s.bac.IsComplete()
	case models.StageReleaseCanvass:
		return s.divisions.AllReleased()
	case models.StageCollectCanvass:
		return s.divisions.AllReturned() && s.ledger.HasPricedQuote()
	case models.StageAAAPreparation:
		return s.abstract.IsComplete()
	default:
		return false
	}
}

// CanAdvance reports whether Advance would succeed.
func (s *Session) CanAdvance() bool {
	return !s.closed && s.StageComplete(s.reached)
}

// Advance moves to the next stage once the current one is complete. Advancing
// out of aaa_preparation closes the session and returns its summary.
func (s *Session) Advance() (*models.SessionSummary, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if !s.StageComplete(s.reached) {
		return nil, fmt.Errorf("%w: %s", ErrStageIncomplete, s.reached)
	}

	idx := s.reached.Index()
	if idx == len(models.Stages)-1 {
		s.closed = true
		summary := s.buildSummary()
		s.summary = &summary
		return s.summary, nil
	}

	s.reached = models.Stages[idx+1]
	s.viewing = s.reached
	return nil, nil
}

// View navigates to a stage already reached, for review. Completion is untouched.
func (s *Session) View(stage models.Stage) error {
	idx := stage.Index()
	if idx < 0 || idx > s.reached.Index() {
		return fmt.Errorf("%w: %s", ErrStageNotReached, stage)
	}
	s.viewing = stage
	return nil
}

// Recommendation recomputes the abstract of awards from the current quotes.
func (s *Session) Recommendation() Recommendation {
	return Compute(s.request.Items, s.ledger.Quotes())
}

// Summary returns the completion record, or nil while the session is open.
func (s *Session) Summary() *models.SessionSummary {
	return s.summary
}

// Snapshot captures the session for display.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ID:              s.ID,
		Request:         s.request,
		HighValue:       s.request.IsHighValue(),
		Stage:           s.reached,
		Viewing:         s.viewing,
		CanAdvance:      s.CanAdvance(),
		Closed:          s.closed,
		CanvassRefNo:    s.canvassRefNo,
		ReceivedBy:      s.receivedBy,
		ResolutionNo:    s.resolutionNo,
		ProcurementMode: s.procurementMode,
		AbstractNo:      s.abstractNo,
		BACRoster:       s.bac.Entries(),
		Divisions:       s.divisions.Assignments(),
		Quotes:          s.ledger.Quotes(),
		AbstractRoster:  s.abstract.Entries(),
		Recommendation:  s.Recommendation(),
	}
}

func (s *Session) buildSummary() models.SessionSummary {
	rec := s.Recommendation()

	summary := models.SessionSummary{
		ID:              uuid.NewString(),
		PRRefNo:         s.request.RefNo,
		CanvassRefNo:    s.canvassRefNo,
		ResolutionNo:    s.resolutionNo,
		ProcurementMode: s.procurementMode,
		AbstractNo:      s.abstractNo,
		Quotes:          s.ledger.Quotes(),
		Signatories:     append(s.bac.Entries(), s.abstract.Entries()...),
		CompletedAt:     s.now(),
	}
	if rec.Awardee != nil {
		summary.AwardedSupplier = rec.Awardee.SupplierName
		summary.AwardedTotal = rec.Awardee.Total
	}
	return summary
}
