// Package drafting asks an external chat bot to propose a reply for an agent.
package drafting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
)

// AdapterName labels drafting failures in logs and metrics.
const AdapterName = "drafting"

// Human-readable outcomes shown to the agent in place of a draft.
const (
	MsgNotConfigured     = "Draft replies are not configured."
	MsgUnauthorized      = "The reply bot rejected its credentials (401)."
	MsgBadRequest        = "The reply bot rejected the request (400)."
	MsgUpstreamStatusFmt = "The reply bot returned an error: %d."
	MsgUnreachable       = "Could not connect to the reply bot."
	MsgEmptyReply        = "The reply bot did not return any text."
)

// Reply is a proposed answer. Generated is false when Text explains a failure.
type Reply struct {
	Text      string
	Generated bool
}

// Drafter proposes replies. Implementations never return errors; failures are
// described in Reply.Text.
type Drafter interface {
	Draft(ctx context.Context, conversationID, message string) Reply
}

type askRequest struct {
	BotID   int    `json:"bot_id"`
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

type askResponse struct {
	Done string `json:"done"`
}

// ProTalkClient talks to the Pro-Talk bot API.
type ProTalkClient struct {
	httpClient *http.Client
	baseURL    string
	botID      int
	botToken   string
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewProTalkClient builds a client from configuration.
func NewProTalkClient(cfg config.DraftingConfig, logger *zap.Logger, metrics *observability.Metrics) *ProTalkClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ProTalkClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		botID:      cfg.BotID,
		botToken:   cfg.BotToken,
		logger:     logger,
		metrics:    metrics,
	}
}

// Enabled reports whether a bot token is configured.
func (c *ProTalkClient) Enabled() bool {
	return c != nil && c.botToken != "" && c.baseURL != ""
}

// Draft implements Drafter.
func (c *ProTalkClient) Draft(ctx context.Context, conversationID, message string) Reply {
	if !c.Enabled() {
		return Reply{Text: MsgNotConfigured}
	}

	body, err := json.Marshal(askRequest{BotID: c.botID, ChatID: conversationID, Message: message})
	if err != nil {
		return c.fail(MsgUnreachable, err)
	}

	url := c.baseURL + "/ask/" + c.botToken
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return c.fail(MsgUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(MsgUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return c.fail(MsgUnauthorized, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusBadRequest:
		return c.fail(MsgBadRequest, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return c.fail(fmt.Sprintf(MsgUpstreamStatusFmt, resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, string(snippet)))
	}

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return c.fail(MsgEmptyReply, fmt.Errorf("decode reply: %w", err))
	}
	if strings.TrimSpace(out.Done) == "" {
		return Reply{Text: MsgEmptyReply}
	}
	return Reply{Text: out.Done, Generated: true}
}

func (c *ProTalkClient) fail(text string, err error) Reply {
	c.metrics.RecordAdapterFailure(AdapterName)
	c.logger.Warn("draft reply unavailable", zap.Error(err))
	return Reply{Text: text}
}
