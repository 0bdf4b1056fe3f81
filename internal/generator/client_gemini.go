package generator

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient implements Generator using Google's Gemini API via the
// genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed generator.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Generate requests req.Count items and parses the model's response.
func (c *GeminiClient) Generate(ctx context.Context, req Request) ([]string, error) {
	temperature := float32(req.Hint.Temperature)
	if temperature == 0 {
		temperature = 0.7
	}

	config := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if req.Hint.Seed != nil {
		seed := int32(*req.Hint.Seed + int64(req.Hint.Variant)*1009)
		config.Seed = &seed
	}

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(req), genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return nil, fmt.Errorf("no completion returned")
	}
	return ParseCandidates(text), nil
}

// Model returns the current model.
func (c *GeminiClient) Model() string {
	return c.model
}
