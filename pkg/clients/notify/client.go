package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/procurement/internal/config"
)

// Client pushes workflow notices to the office chat webhook.
type Client interface {
	Send(ctx context.Context, notice Notice) error
}

// Notice is one workflow event worth telling people about.
type Notice struct {
	Kind    string `json:"kind"`
	RefNo   string `json:"ref_no,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notice kinds.
const (
	KindCanvassCompleted = "canvass_completed"
	KindOverdueReturn    = "overdue_return"
	KindWeeklyDigest     = "weekly_digest"
)

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client using the provided configuration values.
func NewClient(cfg config.NotifyConfig) *APIClient {
	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &APIClient{
		httpClient: restyClient,
		url:        cfg.WebhookURL,
	}
}

// apiError represents an error payload returned by the webhook receiver.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Send posts the notice as JSON.
func (c *APIClient) Send(ctx context.Context, notice Notice) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(notice).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send notice: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Message
		if message == "" {
			message = apiErr.Error
		}
		return fmt.Errorf("webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
