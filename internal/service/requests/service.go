package requests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/domain/models"
	"github.com/mamadbah2/procurement/internal/metrics"
	"github.com/mamadbah2/procurement/internal/repository/mongodb"
)

// ErrInvalidRequest indicates a purchase request that fails intake validation.
var ErrInvalidRequest = errors.New("invalid purchase request")

// ErrInvalidStatus indicates an unknown request status.
var ErrInvalidStatus = errors.New("invalid request status")

const (
	noticeSavedLocally   = "Saved on this device only: the database could not be reached. The request is pending sync."
	noticeListLocal      = "Showing requests kept on this device: the database could not be reached."
	noticeStatusLocal    = "Status changed on this device only: the database could not be reached."
	noticePendingSyncRef = "This request has not reached the database yet; the status change is kept on this device."
)

// Store is the persistence collaborator for purchase requests.
type Store interface {
	InsertRequest(ctx context.Context, pr models.PurchaseRequest) error
	ListRequests(ctx context.Context) ([]models.PurchaseRequest, error)
	GetRequest(ctx context.Context, refNo string) (models.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, refNo string, status models.RequestStatus) error
}

// Result carries a request and, when a write degraded to local state, a one-time notice.
type Result struct {
	Request models.PurchaseRequest `json:"request"`
	Notice  string                 `json:"notice,omitempty"`
}

// Service handles purchase request intake. Writes that fail are kept locally
// and flagged pending sync; they are never retried.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	local     map[string]models.PurchaseRequest
	order     []string
	overrides map[string]models.RequestStatus
}

// NewService wires a new intake service instance.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     store,
		logger:    logger,
		now:       time.Now,
		local:     make(map[string]models.PurchaseRequest),
		overrides: make(map[string]models.RequestStatus),
	}
}

// Create validates and stores a new purchase request.
func (s *Service) Create(ctx context.Context, pr models.PurchaseRequest) (Result, error) {
	pr, err := s.normalize(pr)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	_, exists := s.local[pr.RefNo]
	s.mu.RUnlock()
	if exists {
		return Result{}, fmt.Errorf("%w: %s", mongodb.ErrDuplicate, pr.RefNo)
	}

	err = s.store.InsertRequest(ctx, pr)
	switch {
	case err == nil:
		pr.SyncState = models.SyncStateSynced
		s.logger.Info("purchase request created",
			zap.String("ref_no", pr.RefNo),
			zap.Float64("total", pr.Total()),
			zap.Bool("high_value", pr.IsHighValue()))
		return Result{Request: pr}, nil
	case errors.Is(err, mongodb.ErrDuplicate):
		return Result{}, err
	}

	metrics.RecordPersistenceFailure("mongodb", "insert_request")

	pr.SyncState = models.SyncStatePendingSync
	s.mu.Lock()
	if _, exists := s.local[pr.RefNo]; exists {
		s.mu.Unlock()
		return Result{}, fmt.Errorf("%w: %s", mongodb.ErrDuplicate, pr.RefNo)
	}
	s.local[pr.RefNo] = pr
	s.order = append(s.order, pr.RefNo)
	s.mu.Unlock()

	s.logger.Warn("purchase request kept locally", zap.String("ref_no", pr.RefNo), zap.Error(err))

	return Result{Request: pr, Notice: noticeSavedLocally}, nil
}

// List returns stored requests followed by those still pending sync. When the
// store cannot be read only the local records are returned, with a notice.
func (s *Service) List(ctx context.Context) ([]models.PurchaseRequest, string, error) {
	stored, err := s.store.ListRequests(ctx)
	if err != nil {
		s.logger.Warn("listing purchase requests from local state", zap.Error(err))
		return s.localRequests(), noticeListLocal, nil
	}

	s.mu.RLock()
	for i := range stored {
		if status, ok := s.overrides[stored[i].RefNo]; ok {
			stored[i].Status = status
		}
	}
	s.mu.RUnlock()

	return append(s.localRequests(), stored...), "", nil
}

// Get loads one request, preferring a local pending-sync copy.
func (s *Service) Get(ctx context.Context, refNo string) (models.PurchaseRequest, error) {
	s.mu.RLock()
	pr, ok := s.local[refNo]
	s.mu.RUnlock()
	if ok {
		return pr, nil
	}

	pr, err := s.store.GetRequest(ctx, refNo)
	if err != nil {
		return models.PurchaseRequest{}, err
	}

	s.mu.RLock()
	if status, ok := s.overrides[refNo]; ok {
		pr.Status = status
	}
	s.mu.RUnlock()
	return pr, nil
}

// UpdateStatus moves a request to a new status. A failed store write keeps the
// change locally and returns a notice.
func (s *Service) UpdateStatus(ctx context.Context, refNo string, status models.RequestStatus) (string, error) {
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	if pr, ok := s.local[refNo]; ok {
		pr.Status = status
		pr.UpdatedAt = s.now()
		s.local[refNo] = pr
		s.mu.Unlock()
		return noticePendingSyncRef, nil
	}
	s.mu.Unlock()

	err := s.store.UpdateStatus(ctx, refNo, status)
	switch {
	case err == nil:
		s.mu.Lock()
		delete(s.overrides, refNo)
		s.mu.Unlock()
		s.logger.Info("purchase request status updated", zap.String("ref_no", refNo), zap.String("status", string(status)))
		return "", nil
	case errors.Is(err, mongodb.ErrNotFound):
		return "", err
	}

	s.logger.Warn("status update kept locally", zap.String("ref_no", refNo), zap.Error(err))
	metrics.RecordPersistenceFailure("mongodb", "update_status")

	s.mu.Lock()
	s.overrides[refNo] = status
	s.mu.Unlock()
	return noticeStatusLocal, nil
}

func (s *Service) localRequests() []models.PurchaseRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.PurchaseRequest, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.local[s.order[i]])
	}
	return out
}

func (s *Service) normalize(pr models.PurchaseRequest) (models.PurchaseRequest, error) {
	pr.RefNo = strings.TrimSpace(pr.RefNo)
	if pr.RefNo == "" {
		return pr, fmt.Errorf("%w: reference number is required", ErrInvalidRequest)
	}
	if len(pr.Items) == 0 {
		return pr, fmt.Errorf("%w: at least one line item is required", ErrInvalidRequest)
	}

	items := make([]models.LineItem, len(pr.Items))
	seen := make(map[int]bool, len(pr.Items))
	for i, item := range pr.Items {
		if item.ID == 0 {
			item.ID = i + 1
		}
		if seen[item.ID] {
			return pr, fmt.Errorf("%w: duplicate line item id %d", ErrInvalidRequest, item.ID)
		}
		if item.Quantity < 0 || item.UnitCost < 0 {
			return pr, fmt.Errorf("%w: line item %d has a negative amount", ErrInvalidRequest, item.ID)
		}
		seen[item.ID] = true
		items[i] = item
	}
	pr.Items = items

	if pr.Status == "" {
		pr.Status = models.StatusPending
	}
	if !pr.Status.Valid() {
		return pr, fmt.Errorf("%w: %q", ErrInvalidStatus, pr.Status)
	}

	now := s.now()
	pr.CreatedAt = now
	pr.UpdatedAt = now
	return pr, nil
}
