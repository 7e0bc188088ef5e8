package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Generator is the part of the LLM client the handlers depend on
type Generator interface {
	GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Client wraps the Gemini API configured for JSON-mode output
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// GenerateJSON sends a system and user instruction pair and returns the raw
// text of the first candidate. The model is asked for a JSON document, but
// the content is returned as-is, parsing is the caller's concern.
func (c *Client) GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(2500)
	model.ResponseMIMEType = "application/json"

	res, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("error generating content: %w", err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part type %T", res.Candidates[0].Content.Parts[0])
	}

	return string(text), nil
}
