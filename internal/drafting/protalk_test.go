package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*ProTalkClient, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	metrics := observability.NewMetrics()
	client := NewProTalkClient(config.DraftingConfig{
		BaseURL:        srv.URL + "/",
		BotID:          42,
		BotToken:       "secret",
		TimeoutSeconds: 2,
	}, nil, metrics)
	return client, metrics
}

func TestDraftSendsConversationAndReturnsReply(t *testing.T) {
	var got askRequest
	var path string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"done":"Please try clearing your cache."}`))
	})

	reply := client.Draft(context.Background(), "ticket-1", "the page is blank")

	assert.True(t, reply.Generated)
	assert.Equal(t, "Please try clearing your cache.", reply.Text)
	assert.Equal(t, "/ask/secret", path)
	assert.Equal(t, askRequest{BotID: 42, ChatID: "ticket-1", Message: "the page is blank"}, got)
}

func TestDraftMapsFailuresToReadableText(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: MsgUnauthorized},
		{name: "bad request", status: http.StatusBadRequest, want: MsgBadRequest},
		{name: "server error", status: http.StatusBadGateway, want: fmt.Sprintf(MsgUpstreamStatusFmt, http.StatusBadGateway)},
		{name: "empty done", status: http.StatusOK, body: `{"done":""}`, want: MsgEmptyReply},
		{name: "garbage", status: http.StatusOK, body: `<html>`, want: MsgEmptyReply},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			reply := client.Draft(context.Background(), "ticket-1", "hello")
			assert.False(t, reply.Generated)
			assert.Equal(t, tc.want, reply.Text)
		})
	}
}

func TestDraftUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	metrics := observability.NewMetrics()
	client := NewProTalkClient(config.DraftingConfig{BaseURL: srv.URL, BotToken: "secret", TimeoutSeconds: 1}, nil, metrics)

	reply := client.Draft(context.Background(), "ticket-1", "hello")
	assert.False(t, reply.Generated)
	assert.Equal(t, MsgUnreachable, reply.Text)
	assert.Equal(t, int64(1), metrics.Snapshot().AdapterFailures[AdapterName])
}

func TestDraftWithoutTokenIsNotConfigured(t *testing.T) {
	client := NewProTalkClient(config.DraftingConfig{BaseURL: "http://localhost"}, nil, nil)
	assert.False(t, client.Enabled())
	assert.Equal(t, Reply{Text: MsgNotConfigured}, client.Draft(context.Background(), "t", "m"))
}
