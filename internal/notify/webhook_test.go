package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSender_PostsJSON(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewWebhookSender()
	sub := &Subscription{ID: "sub-1", UserID: "u1", Endpoint: server.URL}
	msg := Message{UserID: "u1", Kind: KindTodoDue, DateKey: "2024-06-10", Title: "Due today", Body: "Buy milk"}

	require.NoError(t, sender.Send(context.Background(), sub, msg))
	assert.Equal(t, msg, received)
}

func TestWebhookSender_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender := NewWebhookSender()
	sub := &Subscription{ID: "sub-1", Endpoint: server.URL}

	err := sender.Send(context.Background(), sub, Message{Kind: KindHabitDue})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookSender_UnreachableEndpoint(t *testing.T) {
	sender := NewWebhookSender()
	sub := &Subscription{ID: "sub-1", Endpoint: "http://127.0.0.1:1/notify"}

	require.Error(t, sender.Send(context.Background(), sub, Message{}))
}
