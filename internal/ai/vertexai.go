package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// VertexAIClient completes prompts with Gemini, through Vertex AI or the Gemini API.
type VertexAIClient struct {
	config *ClientConfig
	client *genai.Client
}

// NewVertexAIClient creates a Gemini client on the Vertex AI backend.
func NewVertexAIClient(ctx context.Context, config *ClientConfig) (*VertexAIClient, error) {
	return newGenAIClient(ctx, config, genai.BackendVertexAI)
}

// NewGoogleAIClient creates a Gemini client on the Gemini API backend. It needs an API key.
func NewGoogleAIClient(ctx context.Context, config *ClientConfig) (*VertexAIClient, error) {
	if config != nil && strings.TrimSpace(config.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	return newGenAIClient(ctx, config, genai.BackendGeminiAPI)
}

func newGenAIClient(ctx context.Context, config *ClientConfig, backend genai.Backend) (*VertexAIClient, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	applyGenAIDefaults(config, backend)

	cc := genai.ClientConfig{
		Backend: backend,
	}
	if strings.TrimSpace(config.APIKey) != "" {
		cc.APIKey = config.APIKey
	}
	if backend == genai.BackendVertexAI {
		if strings.TrimSpace(config.ProjectID) != "" {
			cc.Project = config.ProjectID
		}
		if strings.TrimSpace(config.Location) != "" {
			cc.Location = config.Location
		}
	}
	if strings.TrimSpace(config.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, &cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &VertexAIClient{
		config: config,
		client: client,
	}, nil
}

func applyGenAIDefaults(config *ClientConfig, backend genai.Backend) {
	if config.ChatModel == "" {
		config.ChatModel = DefaultGeminiModel
	}
	if backend == genai.BackendVertexAI && config.Location == "" && strings.TrimSpace(config.APIKey) == "" {
		config.Location = "us-central1"
	}
}

// Complete implements Client using Models.GenerateContent.
func (c *VertexAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temp := req.Temperature
	cfg := genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.Text(req.System)[0]
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.config.ChatModel, genai.Text(req.User), &cfg)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
