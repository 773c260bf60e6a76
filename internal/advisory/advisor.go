package advisory

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/observability"
)

// AdapterName labels advisory failures in logs and metrics.
const AdapterName = "advisory"

// Request is the text sent for analysis.
type Request struct {
	Subject     string
	Description string
}

// Client is an upstream analysis service. Implementations may fail; Advisor absorbs failures.
type Client interface {
	Analyze(ctx context.Context, req Request) (Analyzed, error)
}

// Advisor bounds and guards calls to a Client.
type Advisor struct {
	client  Client
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAdvisor wraps client. A nil client makes every call Unavailable.
func NewAdvisor(client Client, timeout time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{client: client, timeout: timeout, logger: logger, metrics: metrics}
}

// Enabled reports whether an upstream client is configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.client != nil
}

// Analyze never returns an error: failures, timeouts and panics in the client become Unavailable.
func (a *Advisor) Analyze(ctx context.Context, subject, description string) (result Result) {
	if !a.Enabled() {
		return Unavailable{Reason: "advisory service not configured"}
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	type outcome struct {
		analyzed Analyzed
		err      error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: errors.New("advisory client panicked")}
			}
		}()
		analyzed, err := a.client.Analyze(ctx, Request{Subject: subject, Description: description})
		done <- outcome{analyzed: analyzed, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return a.unavailable(out.err)
		}
		return out.analyzed
	case <-ctx.Done():
		return a.unavailable(ctx.Err())
	}
}

func (a *Advisor) unavailable(err error) Unavailable {
	a.metrics.RecordAdapterFailure(AdapterName)
	a.logger.Warn("ticket analysis unavailable", zap.Error(err))
	return Unavailable{Reason: err.Error()}
}
