package advisory

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const analysisPrompt = `You are a customer support triage assistant.
Analyze the support ticket below and answer with a JSON object containing:
category (short label), priority (one of LOW, MEDIUM, HIGH, CRITICAL),
summary (one sentence), sentiment (positive, neutral or negative) and
suggestedSolution (a short proposal for the agent).

Subject: %s
Description: %s`

// GeminiClient asks a Gemini model for a structured analysis.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds a client for the Gemini API. It returns an error when apiKey is empty.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func analysisSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category": str("short category label"),
			"priority": {
				Type: genai.TypeString,
				Enum: []string{"LOW", "MEDIUM", "HIGH", "CRITICAL"},
			},
			"summary":           str("one sentence summary"),
			"sentiment":         str("positive, neutral or negative"),
			"suggestedSolution": str("proposed next step for the agent"),
		},
		Required: []string{"category", "priority", "summary", "sentiment", "suggestedSolution"},
	}
}

// Analyze implements Client.
func (g *GeminiClient) Analyze(ctx context.Context, req Request) (Analyzed, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(fmt.Sprintf(analysisPrompt, req.Subject, req.Description)),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   analysisSchema(),
		})
	if err != nil {
		return Analyzed{}, fmt.Errorf("gemini generate: %w", err)
	}
	return parseAnalysis(resp.Text())
}
