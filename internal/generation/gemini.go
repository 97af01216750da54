package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiGenerator generates block content using Google's Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, log *zap.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model, log: log}, nil
}

// Generate builds a prompt from the request and runs one completion.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	prompt := buildPrompt(req)

	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("Gemini generation failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("Gemini returned no text")
	}

	g.log.Debug("generation completed",
		zap.String("component", req.ComponentID),
		zap.Int("chars", len(text)))

	result := &Result{Composition: text}
	// Bullet-like components come back as a JSON string array.
	var items []string
	if err := json.Unmarshal([]byte(text), &items); err == nil && len(items) > 0 {
		result.Data = items
	}
	return result, nil
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write web page copy for the %q section of a page about %q.\n", req.ComponentID, req.Topic)
	if req.Header != "" {
		fmt.Fprintf(&b, "Section header: %s\n", req.Header)
	}
	if req.SectionContext != "" {
		fmt.Fprintf(&b, "Context: %s\n", req.SectionContext)
	}
	if req.Content != "" {
		fmt.Fprintf(&b, "Existing draft to improve:\n%s\n", req.Content)
	}
	if len(req.StarterSamples) > 0 {
		b.WriteString("Match the tone of these samples:\n")
		for _, sample := range req.StarterSamples {
			fmt.Fprintf(&b, "- %s\n", sample)
		}
	}
	if req.Preface != "" {
		fmt.Fprintf(&b, "The page so far reads:\n%s\n", req.Preface)
		b.WriteString("Continue the narrative without repeating it.\n")
	}
	return b.String()
}
