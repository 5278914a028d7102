package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/procurement/internal/domain/models"
	"github.com/mamadbah2/procurement/internal/service/requests"
)

// RequestService describes the intake operations the HTTP layer can perform.
type RequestService interface {
	Create(ctx context.Context, pr models.PurchaseRequest) (requests.Result, error)
	List(ctx context.Context) ([]models.PurchaseRequest, string, error)
	Get(ctx context.Context, refNo string) (models.PurchaseRequest, error)
	UpdateStatus(ctx context.Context, refNo string, status models.RequestStatus) (string, error)
}

// RequestHandler exposes purchase request intake over HTTP.
type RequestHandler struct {
	svc    RequestService
	logger *zap.Logger
}

// NewRequestHandler constructs the HTTP handler adapter.
func NewRequestHandler(svc RequestService, logger *zap.Logger) *RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestHandler{svc: svc, logger: logger}
}

type requestView struct {
	models.PurchaseRequest
	Total     float64 `json:"total"`
	HighValue bool    `json:"high_value"`
}

func viewOf(pr models.PurchaseRequest) requestView {
	return requestView{PurchaseRequest: pr, Total: pr.Total(), HighValue: pr.IsHighValue()}
}

// Create stores a new purchase request.
func (h *RequestHandler) Create(c *gin.Context) {
	var pr models.PurchaseRequest
	if err := c.ShouldBindJSON(&pr); err != nil {
		h.logger.Warn("invalid purchase request payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.svc.Create(c.Request.Context(), pr)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	body := gin.H{"request": viewOf(res.Request)}
	if res.Notice != "" {
		body["notice"] = res.Notice
		c.JSON(http.StatusAccepted, body)
		return
	}
	c.JSON(http.StatusCreated, body)
}

// List returns every known purchase request.
func (h *RequestHandler) List(c *gin.Context) {
	list, notice, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]requestView, len(list))
	for i, pr := range list {
		views[i] = viewOf(pr)
	}

	body := gin.H{"requests": views}
	if notice != "" {
		body["notice"] = notice
	}
	c.JSON(http.StatusOK, body)
}

// Get returns one purchase request.
func (h *RequestHandler) Get(c *gin.Context) {
	pr, err := h.svc.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": viewOf(pr)})
}

type statusBody struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// UpdateStatus moves a purchase request to a new status.
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	notice, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("ref"), body.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := gin.H{"ref_no": c.Param("ref"), "status": body.Status}
	if notice != "" {
		resp["notice"] = notice
	}
	c.JSON(http.StatusOK, resp)
}
