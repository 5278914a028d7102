package canvass

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/domain/models"
	"github.com/mamadbah2/procurement/internal/metrics"
	"github.com/mamadbah2/procurement/pkg/clients/notify"
)

// RequestSource reads purchase requests and moves their status.
type RequestSource interface {
	Get(ctx context.Context, refNo string) (models.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, refNo string, status models.RequestStatus) (string, error)
}

// SummaryStore persists completed session summaries.
type SummaryStore interface {
	SaveSummary(ctx context.Context, summary models.SessionSummary) error
}

// Exporter publishes a completed abstract of awards.
type Exporter interface {
	ExportAbstract(ctx context.Context, summary models.SessionSummary, rec Recommendation) error
}

// OverdueReturn is a division past its advisory return window.
type OverdueReturn struct {
	RefNo     string    `json:"ref_no"`
	Division  string    `json:"division"`
	Canvasser string    `json:"canvasser"`
	DueAt     time.Time `json:"due_at"`
}

// AdvanceResult reports the session after an advance and, when the abstract
// was completed, its summary.
type AdvanceResult struct {
	Session Snapshot               `json:"session"`
	Summary *models.SessionSummary `json:"summary,omitempty"`
}

// Service owns the canvass sessions of every purchase request in canvassing.
// Sessions are serialized behind one mutex; each remains single-owner.
type Service struct {
	requests  RequestSource
	summaries SummaryStore
	exporter  Exporter
	notifier  notify.Client
	opts      Options
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService wires the canvassing service. exporter and notifier may be nil.
func NewService(requests RequestSource, summaries SummaryStore, exporter Exporter, notifier notify.Client, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		requests:  requests,
		summaries: summaries,
		exporter:  exporter,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		sessions:  make(map[string]*Session),
	}
}

// Start opens a session for an approved purchase request.
func (s *Service) Start(ctx context.Context, refNo string) (Snapshot, error) {
	pr, err := s.requests.Get(ctx, refNo)
	if err != nil {
		return Snapshot{}, err
	}
	if pr.Status != models.StatusApproved {
		return Snapshot{}, fmt.Errorf("%w: %s is %s", ErrRequestNotApproved, refNo, pr.Status)
	}

	s.mu.Lock()
	if _, exists := s.sessions[refNo]; exists {
		s.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionExists, refNo)
	}
	sess := NewSession(pr, s.opts)
	s.sessions[refNo] = sess
	snap := sess.Snapshot()
	s.mu.Unlock()

	metrics.SessionsOpen.Inc()
	s.logger.Info("canvass session started",
		zap.String("ref_no", refNo),
		zap.String("session_id", sess.ID),
		zap.Bool("high_value", pr.IsHighValue()))

	if notice, err := s.requests.UpdateStatus(ctx, refNo, models.StatusCanvassing); err != nil {
		s.logger.Warn("failed to mark request canvassing", zap.String("ref_no", refNo), zap.Error(err))
	} else if notice != "" {
		s.logger.Warn("request status kept locally", zap.String("ref_no", refNo), zap.String("notice", notice))
	}

	return snap, nil
}

// Snapshot returns the current view of a session.
func (s *Service) Snapshot(refNo string) (Snapshot, error) {
	return s.update(refNo, func(*Session) error { return nil })
}

// Recommendation recomputes the abstract of awards of a session.
func (s *Service) Recommendation(refNo string) (Recommendation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[refNo]
	if !ok {
		return Recommendation{}, fmt.Errorf("%w: %s", ErrSessionNotFound, refNo)
	}
	return sess.Recommendation(), nil
}

// AssignCanvassRef sets the canvass reference number of a session.
func (s *Service) AssignCanvassRef(refNo, canvassRef string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.AssignCanvassRef(canvassRef) })
}

// SelectReceiver records who received the purchase request.
func (s *Service) SelectReceiver(refNo, name string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.SelectReceiver(name) })
}

// SetResolution records the BAC resolution number and procurement mode.
func (s *Service) SetResolution(refNo, resolutionNo, mode string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.SetResolution(resolutionNo, mode) })
}

// SetAbstractNo records the abstract of awards number.
func (s *Service) SetAbstractNo(refNo, abstractNo string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.SetAbstractNo(abstractNo) })
}

// SignBAC signs a BAC resolution roster entry, optionally checking the signer.
func (s *Service) SignBAC(refNo string, index int, signer string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.SignBAC(index, signer) })
}

// SignAbstract signs an abstract of awards roster entry, optionally checking the signer.
func (s *Service) SignAbstract(refNo string, index int, signer string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.SignAbstract(index, signer) })
}

// Release hands the canvass form to a division.
func (s *Service) Release(refNo, division string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.Release(division) })
}

// MarkReturned records a division returning its canvass form.
func (s *Service) MarkReturned(refNo, division string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.MarkReturned(division) })
}

// UpsertQuote adds or replaces a supplier quote.
func (s *Service) UpsertQuote(refNo string, q models.SupplierQuote) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.UpsertQuote(q) })
}

// SetPrice records one supplier price for one line item.
func (s *Service) SetPrice(refNo, supplierID string, itemID int, raw string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.SetPrice(supplierID, itemID, raw) })
}

// RemoveQuote drops a supplier quote.
func (s *Service) RemoveQuote(refNo, supplierID string) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.RemoveQuote(supplierID) })
}

// View navigates a session to an already reached stage for review.
func (s *Service) View(refNo string, stage models.Stage) (Snapshot, error) {
	return s.update(refNo, func(sess *Session) error { return sess.View(stage) })
}

// Advance moves a session to its next stage. Completing the abstract persists,
// exports and announces the summary; failures there are logged only.
func (s *Service) Advance(ctx context.Context, refNo string) (AdvanceResult, error) {
	s.mu.Lock()
	sess, ok := s.sessions[refNo]
	if !ok {
		s.mu.Unlock()
		return AdvanceResult{}, fmt.Errorf("%w: %s", ErrSessionNotFound, refNo)
	}

	leaving := sess.Stage()
	summary, err := sess.Advance()
	if err != nil {
		s.mu.Unlock()
		return AdvanceResult{}, err
	}
	rec := sess.Recommendation()
	result := AdvanceResult{Session: sess.Snapshot(), Summary: summary}
	s.mu.Unlock()

	metrics.RecordAdvance(string(leaving))
	s.logger.Info("canvass stage advanced",
		zap.String("ref_no", refNo),
		zap.String("from", string(leaving)),
		zap.String("to", string(result.Session.Stage)),
		zap.Bool("closed", result.Session.Closed))

	if summary != nil {
		metrics.RecordCompletion(summary.AwardedTotal)
		s.complete(ctx, *summary, rec)
	}

	return result, nil
}

// SweepOverdue lists divisions of open sessions past their return window and
// sends one reminder per division. Nothing is blocked or changed.
func (s *Service) SweepOverdue(ctx context.Context, now time.Time) []OverdueReturn {
	s.mu.Lock()
	var overdue []OverdueReturn
	for refNo, sess := range s.sessions {
		if sess.Closed() {
			continue
		}
		for _, a := range sess.Overdue(now) {
			overdue = append(overdue, OverdueReturn{
				RefNo:     refNo,
				Division:  a.Division,
				Canvasser: a.Canvasser,
				DueAt:     *a.DueAt,
			})
		}
	}
	s.mu.Unlock()

	sort.Slice(overdue, func(i, j int) bool {
		if overdue[i].RefNo != overdue[j].RefNo {
			return overdue[i].RefNo < overdue[j].RefNo
		}
		return overdue[i].Division < overdue[j].Division
	})

	metrics.OverdueReturns.Set(float64(len(overdue)))

	for _, o := range overdue {
		s.logger.Warn("canvass return overdue",
			zap.String("ref_no", o.RefNo),
			zap.String("division", o.Division),
			zap.Time("due_at", o.DueAt))
		s.notify(ctx, notify.Notice{
			Kind:    notify.KindOverdueReturn,
			RefNo:   o.RefNo,
			Title:   "Canvass return overdue",
			Message: fmt.Sprintf("%s division canvass for %s was due %s.", o.Division, o.RefNo, o.DueAt.Format("2006-01-02")),
		})
	}

	return overdue
}

func (s *Service) update(refNo string, fn func(*Session) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[refNo]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrSessionNotFound, refNo)
	}
	if err := fn(sess); err != nil {
		return Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

func (s *Service) complete(ctx context.Context, summary models.SessionSummary, rec Recommendation) {
	log := s.logger.With(zap.String("ref_no", summary.PRRefNo), zap.String("summary_id", summary.ID))

	if err := s.summaries.SaveSummary(ctx, summary); err != nil {
		metrics.RecordPersistenceFailure("mongodb", "save_summary")
		log.Error("failed to persist canvass summary", zap.Error(err))
	}

	if s.exporter != nil {
		if err := s.exporter.ExportAbstract(ctx, summary, rec); err != nil {
			metrics.RecordPersistenceFailure("sheets", "export_abstract")
			log.Error("failed to export abstract", zap.Error(err))
		}
	}

	if notice, err := s.requests.UpdateStatus(ctx, summary.PRRefNo, models.StatusAwarded); err != nil {
		log.Error("failed to mark request awarded", zap.Error(err))
	} else if notice != "" {
		log.Warn("request status kept locally", zap.String("notice", notice))
	}

	message := fmt.Sprintf("Abstract %s for %s is fully signed.", summary.AbstractNo, summary.PRRefNo)
	if summary.AwardedSupplier != "" {
		message = fmt.Sprintf("Abstract %s for %s awarded to %s at %.2f.", summary.AbstractNo, summary.PRRefNo, summary.AwardedSupplier, summary.AwardedTotal)
	}
	s.notify(ctx, notify.Notice{
		Kind:    notify.KindCanvassCompleted,
		RefNo:   summary.PRRefNo,
		Title:   "Canvass completed",
		Message: message,
	})

	log.Info("canvass session completed",
		zap.String("awarded_supplier", summary.AwardedSupplier),
		zap.Float64("awarded_total", summary.AwardedTotal))
}

func (s *Service) notify(ctx context.Context, notice notify.Notice) {
	if s.notifier == nil {
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err := s.notifier.Send(ctxWithTimeout, notice)
	metrics.RecordNotification(err)
	if err != nil {
		s.logger.Warn("failed to send notice", zap.String("kind", notice.Kind), zap.Error(err))
	}
}
