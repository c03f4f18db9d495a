package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// Test Provider constants
func TestProviderConstants(t *testing.T) {
	tests := []struct {
		provider Provider
		expected string
	}{
		{ProviderOpenAI, "openai"},
		{ProviderVertexAI, "vertexai"},
		{ProviderGoogle, "google"},
		{ProviderStub, "stub"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			if string(tt.provider) != tt.expected {
				t.Errorf("Provider constant mismatch. Expected: %s, Got: %s", tt.expected, string(tt.provider))
			}
		})
	}
}

// Test NewClient function
func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		config      *ClientConfig
		expectError bool
		errorMsg    string
		clientType  string
	}{
		{
			name:        "nil config",
			config:      nil,
			expectError: true,
			errorMsg:    "client config is required",
		},
		{
			name: "openai provider",
			config: &ClientConfig{
				Provider: ProviderOpenAI,
				APIKey:   "test-key",
			},
			clientType: "*ai.OpenAIClient",
		},
		{
			name: "google provider without key",
			config: &ClientConfig{
				Provider: ProviderGoogle,
			},
			expectError: true,
			errorMsg:    "provider API key unset",
		},
		{
			name: "stub provider",
			config: &ClientConfig{
				Provider: ProviderStub,
			},
			clientType: "*ai.StubClient",
		},
		{
			name: "unsupported provider",
			config: &ClientConfig{
				Provider: Provider("unsupported"),
			},
			expectError: true,
			errorMsg:    "unsupported provider: unsupported",
		},
		{
			name: "empty provider",
			config: &ClientConfig{
				Provider: Provider(""),
			},
			expectError: true,
			errorMsg:    "unsupported provider: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.config)

			if tt.expectError {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tt.errorMsg, err.Error())
				}
				if client != nil {
					t.Errorf("Expected nil client when error occurs, got %v", client)
				}
				return
			}

			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			clientTypeName := ""
			switch client.(type) {
			case *OpenAIClient:
				clientTypeName = "*ai.OpenAIClient"
			case *VertexAIClient:
				clientTypeName = "*ai.VertexAIClient"
			case *StubClient:
				clientTypeName = "*ai.StubClient"
			default:
				clientTypeName = "unknown"
			}
			if clientTypeName != tt.clientType {
				t.Errorf("Expected client type '%s', got '%s'", tt.clientType, clientTypeName)
			}
		})
	}
}

func TestNewClient_GoogleMissingKeyIsSentinel(t *testing.T) {
	c, err := NewClient(&ClientConfig{Provider: ProviderGoogle})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Expected ErrMissingAPIKey, got %v", err)
	}
	// A nil *VertexAIClient inside the interface would compare non-nil.
	if c != nil {
		t.Errorf("Expected a nil Client interface, got %T", c)
	}
}

// Test StubClient Complete method
func TestStubClient_Complete(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		expected string
	}{
		{
			name:     "single line",
			user:     "make an autoclicker",
			expected: "#Requires AutoHotkey v2.0\n; stub response: make an autoclicker",
		},
		{
			name:     "multi line keeps first",
			user:     "\n  Game: Fisch\nTask: reel",
			expected: "#Requires AutoHotkey v2.0\n; stub response: Game: Fisch",
		},
		{
			name:     "empty",
			user:     "",
			expected: "#Requires AutoHotkey v2.0\n; stub response: empty request",
		},
		{
			name:     "long line is truncated",
			user:     strings.Repeat("a", 200),
			expected: "#Requires AutoHotkey v2.0\n; stub response: " + strings.Repeat("a", 80),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NewStubClient().Complete(context.Background(), CompletionRequest{User: tt.user})
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if out != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, out)
			}
		})
	}
}

// Test Client interface compliance
func TestClientInterfaceCompliance(t *testing.T) {
	var _ Client = &StubClient{}
	var _ Client = &OpenAIClient{}
	var _ Client = &VertexAIClient{}
}
