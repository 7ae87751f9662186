package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifierPostsWarning(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var msg WebhookMessage
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		assert.Equal(t, "WARNING: testfs: used 95%", msg.Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL, nil).Notify(context.Background(), "testfs", "95%")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookNotifierReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL, srv.Client()).Notify(context.Background(), "/dev/sda1", "91%")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookNotifierEmptyEndpoint(t *testing.T) {
	err := NewWebhookNotifier("", nil).Notify(context.Background(), "/dev/sda1", "91%")
	require.Error(t, err)
}

func TestWarningText(t *testing.T) {
	assert.Equal(t, "WARNING: /dev/sda1: used 85%", WarningText("/dev/sda1", "85%"))
}
