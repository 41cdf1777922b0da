package llm

import (
	"context"
	"fmt"
	"time"

	"legalforge/internal/logging"

	"google.golang.org/genai"
)

// GenAIClient implements Client against Google's Gemini API.
type GenAIClient struct {
	client      *genai.Client
	model       string
	temperature float32
	topP        float32
	maxOutput   int32
}

// NewGenAIClient creates a model-call client for a single agent profile's
// model/temperature/top-p settings.
func NewGenAIClient(apiKey, model string, temperature, topP float64, maxOutputTokens int) (*GenAIClient, error) {
	timer := logging.StartTimer(logging.CategoryAPI, "NewGenAIClient")
	defer timer.Stop()

	if apiKey == "" {
		logging.Get(logging.CategoryAPI).Error("GenAI API key is required but not provided")
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	ctx := context.Background()
	start := time.Now()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("failed to create GenAI client after %v: %v", time.Since(start), err)
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	logging.APIDebug("GenAI client created for model=%s in %v", model, time.Since(start))

	return &GenAIClient{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		topP:        float32(topP),
		maxOutput:   int32(maxOutputTokens),
	}, nil
}

// Complete sends a single user turn with no system instruction.
func (c *GenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, "", prompt)
}

// CompleteWithSystem sends a user turn under a system instruction.
func (c *GenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.generate(ctx, systemPrompt, userPrompt)
}

func (c *GenAIClient) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(userPrompt, genai.RoleUser)}

	cfg := &genai.GenerateContentConfig{
		Temperature:     &c.temperature,
		TopP:            &c.topP,
		MaxOutputTokens: c.maxOutput,
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	latency := time.Since(start)

	if err != nil {
		logging.Get(logging.CategoryAPI).Error("GenAI.GenerateContent failed after %v: %v", latency, err)
		return "", fmt.Errorf("genai generate failed: %w", err)
	}

	logging.APIDebug("GenAI.GenerateContent model=%s latency=%v", c.model, latency)

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("genai generate returned no text")
	}
	return text, nil
}

// extractText pulls the concatenated text out of the first candidate.
// genai.GenerateContentResponse exposes a Text() convenience on newer SDK
// versions, but it collapses to the same walk over Candidates/Parts.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}
