package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// TextGenerator produces the raw text of one structured-generation call.
// The Gemini client implements it; tests substitute their own.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient is the production TextGenerator: Gemini with a response schema
// constraining output to the route shape.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	m := client.GenerativeModel(model)
	m.GenerationConfig.ResponseMIMEType = "application/json"
	m.GenerationConfig.ResponseSchema = routeSchema()
	return &GeminiClient{client: client, model: m}, nil
}

// routeSchema constrains generation to exactly the three route fields.
func routeSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"start":     {Type: genai.TypeString},
			"end":       {Type: genai.TypeString},
			"waypoints": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
	}
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	var out string
	var lastErr error

	operation := func() error {
		resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			lastErr = err
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 {
				// Client errors won't heal on retry
				return backoff.Permanent(err)
			}
			return err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			lastErr = fmt.Errorf("empty generation response")
			return backoff.Permanent(lastErr)
		}
		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		out = sb.String()
		lastErr = nil
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 45 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		if lastErr != nil {
			return "", fmt.Errorf("generate: %w", lastErr)
		}
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}
