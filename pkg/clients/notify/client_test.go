package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/procurement/internal/config"
)

func TestAPIClient_Send(t *testing.T) {
	var (
		got  Notice
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: srv.URL, Token: "secret"})
	notice := Notice{Kind: KindOverdueReturn, RefNo: "PR-001", Title: "Canvass return overdue", Message: "Operations is late."}

	require.NoError(t, client.Send(context.Background(), notice))
	assert.Equal(t, notice, got)
	assert.Equal(t, "Bearer secret", auth)
}

func TestAPIClient_SendErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: srv.URL})

	err := client.Send(context.Background(), Notice{Kind: KindWeeklyDigest})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "code=401")
	assert.Contains(t, err.Error(), "bad token")
}

func TestAPIClient_SendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient(config.NotifyConfig{WebhookURL: url})

	assert.Error(t, client.Send(context.Background(), Notice{Kind: KindCanvassCompleted}))
}
