package sentiment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-1.5-flash-latest"
	}

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) Estimate(ctx context.Context, text string) (emotion.Verdict, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(verdictPrompt, text)))
	if err != nil {
		return emotion.Verdict{}, fmt.Errorf("gemini completion failed: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return emotion.Verdict{}, errors.New("no candidates returned")
	}

	var reply string
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			reply += string(t)
		}
	}

	return parseVerdict(reply)
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
