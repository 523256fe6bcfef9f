package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/ollama/ollama/api"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

type Ollama struct {
	client *api.Client
	model  string
}

func NewOllama(model string) (*Ollama, error) {
	if model == "" {
		model = "llama3.2"
	}

	baseURL := "http://localhost:11434"
	if envURL := os.Getenv("OLLAMA_HOST"); envURL != "" {
		baseURL = envURL
	}
	uri, _ := url.Parse(baseURL)
	client := api.NewClient(uri, http.DefaultClient)

	return &Ollama{
		client: client,
		model:  model,
	}, nil
}

func (o *Ollama) Name() string {
	return "ollama"
}

func (o *Ollama) Estimate(ctx context.Context, text string) (emotion.Verdict, error) {
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "user", Content: fmt.Sprintf(verdictPrompt, text)},
		},
		Stream: new(bool), // false
	}

	var reply string
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		reply += resp.Message.Content
		return nil
	})
	if err != nil {
		return emotion.Verdict{}, fmt.Errorf("ollama chat failed: %w", err)
	}

	return parseVerdict(reply)
}
