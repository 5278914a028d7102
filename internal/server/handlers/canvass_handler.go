package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/domain/models"
	"github.com/mamadbah2/procurement/internal/service/canvass"
)

// CanvassService describes the canvassing operations the HTTP layer can perform.
type CanvassService interface {
	Start(ctx context.Context, refNo string) (canvass.Snapshot, error)
	Snapshot(refNo string) (canvass.Snapshot, error)
	Recommendation(refNo string) (canvass.Recommendation, error)
	AssignCanvassRef(refNo, canvassRef string) (canvass.Snapshot, error)
	SelectReceiver(refNo, name string) (canvass.Snapshot, error)
	SetResolution(refNo, resolutionNo, mode string) (canvass.Snapshot, error)
	SetAbstractNo(refNo, abstractNo string) (canvass.Snapshot, error)
	SignBAC(refNo string, index int, signer string) (canvass.Snapshot, error)
	SignAbstract(refNo string, index int, signer string) (canvass.Snapshot, error)
	Release(refNo, division string) (canvass.Snapshot, error)
	MarkReturned(refNo, division string) (canvass.Snapshot, error)
	UpsertQuote(refNo string, q models.SupplierQuote) (canvass.Snapshot, error)
	SetPrice(refNo, supplierID string, itemID int, raw string) (canvass.Snapshot, error)
	RemoveQuote(refNo, supplierID string) (canvass.Snapshot, error)
	View(refNo string, stage models.Stage) (canvass.Snapshot, error)
	Advance(ctx context.Context, refNo string) (canvass.AdvanceResult, error)
}

// CanvassHandler exposes the canvassing workflow over HTTP.
type CanvassHandler struct {
	svc    CanvassService
	logger *zap.Logger
}

// NewCanvassHandler constructs the HTTP handler adapter.
func NewCanvassHandler(svc CanvassService, logger *zap.Logger) *CanvassHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvassHandler{svc: svc, logger: logger}
}

type valueBody struct {
	Value string `json:"value" binding:"required"`
}

type resolutionBody struct {
	ResolutionNo    string `json:"resolution_no" binding:"required"`
	ProcurementMode string `json:"procurement_mode"`
}

type signBody struct {
	Signer string `json:"signer"`
}

type priceBody struct {
	Price string `json:"price"`
}

// Start opens a session for an approved purchase request.
func (h *CanvassHandler) Start(c *gin.Context) {
	snap, err := h.svc.Start(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// Get returns the session state with its current recommendation.
func (h *CanvassHandler) Get(c *gin.Context) {
	h.reply(c)(h.svc.Snapshot(c.Param("ref")))
}

// Award returns the abstract of awards computed from the current quotes.
func (h *CanvassHandler) Award(c *gin.Context) {
	rec, err := h.svc.Recommendation(c.Param("ref"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AssignReference sets the canvass reference number.
func (h *CanvassHandler) AssignReference(c *gin.Context) {
	var body valueBody
	if !h.bind(c, &body) {
		return
	}
	h.reply(c)(h.svc.AssignCanvassRef(c.Param("ref"), body.Value))
}

// SelectReceiver records who received the purchase request.
func (h *CanvassHandler) SelectReceiver(c *gin.Context) {
	var body valueBody
	if !h.bind(c, &body) {
		return
	}
	h.reply(c)(h.svc.SelectReceiver(c.Param("ref"), body.Value))
}

// SetResolution records the BAC resolution number and procurement mode.
func (h *CanvassHandler) SetResolution(c *gin.Context) {
	var body resolutionBody
	if !h.bind(c, &body) {
		return
	}
	h.reply(c)(h.svc.SetResolution(c.Param("ref"), body.ResolutionNo, body.ProcurementMode))
}

// SetAbstractNo records the abstract of awards number.
func (h *CanvassHandler) SetAbstractNo(c *gin.Context) {
	var body valueBody
	if !h.bind(c, &body) {
		return
	}
	h.reply(c)(h.svc.SetAbstractNo(c.Param("ref"), body.Value))
}

// SignBAC signs a BAC resolution roster entry.
func (h *CanvassHandler) SignBAC(c *gin.Context) {
	index, body, ok := h.signArgs(c)
	if !ok {
		return
	}
	h.reply(c)(h.svc.SignBAC(c.Param("ref"), index, body.Signer))
}

// SignAbstract signs an abstract of awards roster entry.
func (h *CanvassHandler) SignAbstract(c *gin.Context) {
	index, body, ok := h.signArgs(c)
	if !ok {
		return
	}
	h.reply(c)(h.svc.SignAbstract(c.Param("ref"), index, body.Signer))
}

// Release hands the canvass form to a division.
func (h *CanvassHandler) Release(c *gin.Context) {
	h.reply(c)(h.svc.Release(c.Param("ref"), c.Param("division")))
}

// MarkReturned records a division returning its canvass form.
func (h *CanvassHandler) MarkReturned(c *gin.Context) {
	h.reply(c)(h.svc.MarkReturned(c.Param("ref"), c.Param("division")))
}

// UpsertQuote adds or replaces a supplier quote.
func (h *CanvassHandler) UpsertQuote(c *gin.Context) {
	var q models.SupplierQuote
	if !h.bind(c, &q) {
		return
	}
	h.reply(c)(h.svc.UpsertQuote(c.Param("ref"), q))
}

// SetPrice records one supplier price for one line item.
func (h *CanvassHandler) SetPrice(c *gin.Context) {
	itemID, err := strconv.Atoi(c.Param("item"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return
	}
	var body priceBody
	if !h.bind(c, &body) {
		return
	}
	h.reply(c)(h.svc.SetPrice(c.Param("ref"), c.Param("supplier"), itemID, body.Price))
}

// RemoveQuote drops a supplier quote.
func (h *CanvassHandler) RemoveQuote(c *gin.Context) {
	h.reply(c)(h.svc.RemoveQuote(c.Param("ref"), c.Param("supplier")))
}

// View navigates to an already reached stage for review.
func (h *CanvassHandler) View(c *gin.Context) {
	h.reply(c)(h.svc.View(c.Param("ref"), models.Stage(c.Param("stage"))))
}

// Advance moves the session to its next stage.
func (h *CanvassHandler) Advance(c *gin.Context) {
	res, err := h.svc.Advance(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *CanvassHandler) bind(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		h.logger.Warn("invalid canvass payload", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}

func (h *CanvassHandler) signArgs(c *gin.Context) (int, signBody, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signatory index"})
		return 0, signBody{}, false
	}

	var body signBody
	if c.Request.ContentLength > 0 && !h.bind(c, &body) {
		return 0, signBody{}, false
	}
	return index, body, true
}

func (h *CanvassHandler) reply(c *gin.Context) func(canvass.Snapshot, error) {
	return func(snap canvass.Snapshot, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
