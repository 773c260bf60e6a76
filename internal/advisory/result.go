// Package advisory suggests category, priority, summary and sentiment for a ticket using a
// generative model. It is best-effort: callers get either Analyzed or Unavailable, never an error.
package advisory

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// Result is either Analyzed or Unavailable.
type Result interface {
	isResult()
}

// Analyzed carries the model's suggestions.
type Analyzed struct {
	Category          string                `json:"category"`
	Priority          domain.TicketPriority `json:"priority"`
	Summary           string                `json:"summary"`
	Sentiment         string                `json:"sentiment"`
	SuggestedSolution string                `json:"suggestedSolution"`
}

// Unavailable means the upstream was unreachable, unconfigured, slow or returned garbage.
type Unavailable struct {
	Reason string
}

func (Analyzed) isResult()    {}
func (Unavailable) isResult() {}

// Insight converts the suggestions into what is stored on a ticket.
func (a Analyzed) Insight() domain.TicketInsight {
	return domain.TicketInsight{
		Summary:           a.Summary,
		Sentiment:         a.Sentiment,
		SuggestedSolution: a.SuggestedSolution,
	}
}

// Fallback is the safe object reported in place of a real analysis.
func (Unavailable) Fallback() Analyzed {
	return Analyzed{
		Category:          domain.DefaultCategory,
		Priority:          domain.DefaultPriority,
		Summary:           "analysis unavailable",
		Sentiment:         "neutral",
		SuggestedSolution: "please review manually",
	}
}

var errEmptyResponse = errors.New("empty model response")

// parseAnalysis decodes a model response and normalizes it: unknown priorities become
// MEDIUM and a blank category becomes the default.
func parseAnalysis(raw string) (Analyzed, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Analyzed{}, errEmptyResponse
	}

	var out Analyzed
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Analyzed{}, err
	}
	out.Priority = domain.TicketPriority(strings.ToUpper(strings.TrimSpace(string(out.Priority))))
	if !out.Priority.Valid() {
		out.Priority = domain.DefaultPriority
	}
	out.Category = strings.TrimSpace(out.Category)
	if out.Category == "" {
		out.Category = domain.DefaultCategory
	}
	return out, nil
}
