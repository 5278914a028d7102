package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/procurement/internal/domain/models"
	"github.com/mamadbah2/procurement/internal/repository/mongodb"
	"github.com/mamadbah2/procurement/internal/server/handlers"
	"github.com/mamadbah2/procurement/internal/server/router"
	"github.com/mamadbah2/procurement/internal/service/canvass"
	"github.com/mamadbah2/procurement/internal/service/requests"
)

type memoryStore struct {
	requests  map[string]models.PurchaseRequest
	summaries []models.SessionSummary
	down      bool
}

func (m *memoryStore) InsertRequest(_ context.Context, pr models.PurchaseRequest) error {
	if m.down {
		return errors.New("connection refused")
	}
	if _, ok := m.requests[pr.RefNo]; ok {
		return mongodb.ErrDuplicate
	}
	m.requests[pr.RefNo] = pr
	return nil
}

func (m *memoryStore) ListRequests(context.Context) ([]models.PurchaseRequest, error) {
	out := make([]models.PurchaseRequest, 0, len(m.requests))
	for _, pr := range m.requests {
		out = append(out, pr)
	}
	return out, nil
}

func (m *memoryStore) GetRequest(_ context.Context, refNo string) (models.PurchaseRequest, error) {
	pr, ok := m.requests[refNo]
	if !ok {
		return models.PurchaseRequest{}, mongodb.ErrNotFound
	}
	return pr, nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, refNo string, status models.RequestStatus) error {
	pr, ok := m.requests[refNo]
	if !ok {
		return mongodb.ErrNotFound
	}
	pr.Status = status
	m.requests[refNo] = pr
	return nil
}

func (m *memoryStore) SaveSummary(_ context.Context, summary models.SessionSummary) error {
	m.summaries = append(m.summaries, summary)
	return nil
}

func newTestEngine(t *testing.T) (*gin.Engine, *memoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memoryStore{requests: make(map[string]models.PurchaseRequest)}
	requestSvc := requests.NewService(store, nil)
	canvassSvc := canvass.NewService(requestSvc, store, nil, nil, canvass.Options{
		BACMembers:          []models.Signatory{{Name: "Ana Reyes", Role: "Chairperson"}},
		AbstractSignatories: []models.Signatory{{Name: "Fe Lim", Role: "Secretariat"}},
		Divisions:           []canvass.DivisionSpec{{Division: "Operations", Canvasser: "Eli"}},
	}, nil)

	engine := router.New(
		handlers.NewRequestHandler(requestSvc, nil),
		handlers.NewCanvassHandler(canvassSvc, nil),
		nil,
	)
	return engine, store
}

func do(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func purchaseRequestBody(ref string) map[string]any {
	return map[string]any{
		"ref_no":  ref,
		"office":  "Provincial Office",
		"purpose": "Seminar kits",
		"items": []map[string]any{
			{"description": "Notebook", "unit": "pc", "quantity": 100, "unit_cost": 150},
		},
	}
}

func TestRequestHandler_Create(t *testing.T) {
	engine, store := newTestEngine(t)

	rec, body := do(t, engine, http.MethodPost, "/requests", purchaseRequestBody("PR-001"))

	require.Equal(t, http.StatusCreated, rec.Code)
	request := body["request"].(map[string]any)
	assert.Equal(t, "PR-001", request["ref_no"])
	assert.Equal(t, 15000.0, request["total"])
	assert.Equal(t, true, request["high_value"])
	assert.Contains(t, store.requests, "PR-001")

	rec, _ = do(t, engine, http.MethodPost, "/requests", purchaseRequestBody("PR-001"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRequestHandler_CreateKeptLocally(t *testing.T) {
	engine, store := newTestEngine(t)
	store.down = true

	rec, body := do(t, engine, http.MethodPost, "/requests", purchaseRequestBody("PR-001"))

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, body["notice"])
	assert.Equal(t, string(models.SyncStatePendingSync), body["request"].(map[string]any)["sync_state"])
}

func TestRequestHandler_CreateInvalidBody(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec, _ := do(t, engine, http.MethodPost, "/requests", map[string]any{"ref_no": "PR-001"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, engine, http.MethodPatch, "/requests/PR-404/status", map[string]any{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCanvassHandler_Workflow(t *testing.T) {
	engine, store := newTestEngine(t)

	rec, _ := do(t, engine, http.MethodPost, "/requests", purchaseRequestBody("PR-001"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "pending requests cannot be canvassed")

	rec, _ = do(t, engine, http.MethodPatch, "/requests/PR-001/status", map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, engine, http.MethodPost, "/canvass/PR-001", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, string(models.StagePRReceived), body["stage"])
	assert.Equal(t, true, body["high_value"])

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/advance", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	steps := []struct {
		method, path string
		body         any
	}{
		{http.MethodPut, "/canvass/PR-001/reference", map[string]any{"value": "CV-001"}},
		{http.MethodPut, "/canvass/PR-001/receiver", map[string]any{"value": "Hana Go"}},
		{http.MethodPost, "/canvass/PR-001/advance", nil},
		{http.MethodPut, "/canvass/PR-001/resolution", map[string]any{"resolution_no": "RES-1", "procurement_mode": "Small Value Procurement"}},
		{http.MethodPost, "/canvass/PR-001/bac/0/sign", map[string]any{"signer": "Ana Reyes"}},
		{http.MethodPost, "/canvass/PR-001/advance", nil},
		{http.MethodPost, "/canvass/PR-001/divisions/Operations/release", nil},
		{http.MethodPost, "/canvass/PR-001/advance", nil},
		{http.MethodPost, "/canvass/PR-001/divisions/Operations/return", nil},
		{http.MethodPut, "/canvass/PR-001/quotes", map[string]any{"supplier_id": "SUP-A", "supplier_name": "Alpha", "prices": map[string]string{"1": "140"}}},
		{http.MethodPut, "/canvass/PR-001/quotes", map[string]any{"supplier_id": "SUP-B", "supplier_name": "Bravo"}},
		{http.MethodPut, "/canvass/PR-001/quotes/SUP-B/prices/1", map[string]any{"price": "PHP 135"}},
		{http.MethodPost, "/canvass/PR-001/advance", nil},
		{http.MethodPut, "/canvass/PR-001/abstract-no", map[string]any{"value": "AOA-1"}},
		{http.MethodPost, "/canvass/PR-001/abstract/0/sign", nil},
	}
	for _, step := range steps {
		rec, _ := do(t, engine, step.method, step.path, step.body)
		require.Equal(t, http.StatusOK, rec.Code, "%s %s: %s", step.method, step.path, rec.Body.String())
	}

	rec, body = do(t, engine, http.MethodGet, "/canvass/PR-001/award", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SUP-B", body["awardee"].(map[string]any)["supplier_id"])

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/stages/pr_received/view", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body = do(t, engine, http.MethodPost, "/canvass/PR-001/advance", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, "PR-001", summary["pr_ref_no"])
	assert.Equal(t, 13500.0, summary["awarded_total"])
	require.Len(t, store.summaries, 1)
	assert.Equal(t, models.StatusAwarded, store.requests["PR-001"].Status)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/advance", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCanvassHandler_Errors(t *testing.T) {
	engine, _ := newTestEngine(t)

	rec, _ := do(t, engine, http.MethodGet, "/canvass/PR-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/requests", purchaseRequestBody("PR-001"))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = do(t, engine, http.MethodPatch, "/requests/PR-001/status", map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/bac/x/sign", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/bac/5/sign", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/bac/0/sign", map[string]any{"signer": "Someone Else"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/stages/collect_canvass/view", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, engine, http.MethodPost, "/canvass/PR-001/divisions/Legal/release", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, engine, http.MethodGet, "/canvass/PR-001/stages/pr_received", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "stage review is not a read")

	rec, _ = do(t, engine, http.MethodPut, "/canvass/PR-001/quotes", map[string]any{"supplier_id": "SUP-Z", "supplier_name": "Zed", "prices": map[string]string{"99": "10"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
