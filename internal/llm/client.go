// Package llm wraps the hosted language model behind a small interface so
// every assistant feature can be exercised with a fake in tests.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/notedrop/notedrop-server/internal/model"
)

// Client issues one synchronous completion per call. There is no retry,
// queuing or batching anywhere; a failed call surfaces immediately.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// GenAIClient calls the Gemini API via the official Go SDK.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient creates a Gemini-backed client.
func NewGenAIClient(ctx context.Context, apiKey, modelName string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIClient{client: client, model: modelName}, nil
}

// Generate issues one model call and returns the raw reply text.
func (c *GenAIClient) Generate(ctx context.Context, system, user string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrUpstreamCall, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", model.ErrUpstreamParse)
	}
	return text, nil
}
