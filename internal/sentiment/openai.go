package sentiment

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/felixgeelhaar/zenith/internal/emotion"
)

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	client := openai.NewClientWithConfig(config)
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAI{
		client: client,
		model:  model,
	}, nil
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) Estimate(ctx context.Context, text string) (emotion.Verdict, error) {
	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: o.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(verdictPrompt, text)},
			},
			MaxTokens:   16,
			Temperature: 0,
		},
	)
	if err != nil {
		return emotion.Verdict{}, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return emotion.Verdict{}, errors.New("no choices returned")
	}

	return parseVerdict(resp.Choices[0].Message.Content)
}
