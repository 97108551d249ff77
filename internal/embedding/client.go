// Package embedding derives semantic embedding vectors from free-text
// profile content.
package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/latentspace/match-engine/internal/types"
	"google.golang.org/api/option"
)

// DefaultModel is the embedding model used when none is configured.
const DefaultModel = "text-embedding-004"

// Client is an abstraction over embedding providers.
type Client interface {
	// EmbedProfile returns the embedding vector for a profile's text content.
	EmbedProfile(ctx context.Context, profile *types.UserProfile) ([]float32, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client for Google Gemini embedding models.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini embedding client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// EmbedProfile embeds the textual representation of a profile.
func (c *GeminiClient) EmbedProfile(ctx context.Context, profile *types.UserProfile) ([]float32, error) {
	em := c.client.EmbeddingModel(c.model)

	resp, err := em.EmbedContent(ctx, genai.Text(ProfileText(profile)))
	if err != nil {
		return nil, fmt.Errorf("failed to embed profile: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	return resp.Embedding.Values, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// ProfileText builds the text representation of a profile that is embedded.
// The representation is stable: the same profile snapshot always produces
// the same text.
func ProfileText(p *types.UserProfile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Role: %s\n", p.RoleIntent))
	sb.WriteString(fmt.Sprintf("Seniority: %s\n", p.Seniority))
	if len(p.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills: %s\n", strings.Join(p.Skills, ", ")))
	}
	if len(p.Industries) > 0 {
		sb.WriteString(fmt.Sprintf("Industries: %s\n", strings.Join(p.Industries, ", ")))
	}
	if len(p.TechStack) > 0 {
		sb.WriteString(fmt.Sprintf("Tech stack: %s\n", strings.Join(p.TechStack, ", ")))
	}
	if p.LocationCity != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", p.LocationCity))
	}
	if p.Bio != "" {
		sb.WriteString("Bio: ")
		sb.WriteString(p.Bio)
		sb.WriteString("\n")
	}

	return sb.String()
}
