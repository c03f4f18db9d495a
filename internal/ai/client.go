package ai

import (
	"context"
	"errors"
	"strings"
)

// CompletionRequest is a single system + user turn sent to a chat model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Client sends one completion request and returns the model's text.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Provider is enumeration of supported AI providers
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderVertexAI Provider = "vertexai"
	ProviderGoogle   Provider = "google"
	ProviderStub     Provider = "stub"
)

// ErrMissingAPIKey is returned before any network call when a provider needs a key.
var ErrMissingAPIKey = errors.New("provider API key unset")

// ClientConfig holds configuration for AI clients
type ClientConfig struct {
	APIKey    string
	ChatModel string
	BaseURL   string
	ProjectID string
	Location  string
	Provider  Provider
}

// NewClient creates a new AI client based on configuration
func NewClient(config *ClientConfig) (Client, error) {
	if config == nil {
		return nil, errors.New("client config is required")
	}

	ctx := context.Background()
	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config), nil
	case ProviderVertexAI:
		vc, err := NewVertexAIClient(ctx, config)
		if err != nil {
			return nil, err
		}
		return vc, nil
	case ProviderGoogle:
		gc, err := NewGoogleAIClient(ctx, config)
		if err != nil {
			return nil, err
		}
		return gc, nil
	case ProviderStub:
		return NewStubClient(), nil
	default:
		return nil, errors.New("unsupported provider: " + string(config.Provider))
	}
}

// StubClient answers without a model. It is used offline and in tests.
type StubClient struct{}

// NewStubClient creates a new StubClient
func NewStubClient() *StubClient {
	return &StubClient{}
}

// Complete echoes the first line of the user message as an AutoHotkey comment.
func (s *StubClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	first, _, _ := strings.Cut(strings.TrimSpace(req.User), "\n")
	first = strings.TrimSpace(first)
	if len(first) > 80 {
		first = first[:80]
	}
	if first == "" {
		first = "empty request"
	}
	return "#Requires AutoHotkey v2.0\n; stub response: " + first, nil
}
