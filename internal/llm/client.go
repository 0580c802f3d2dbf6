package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the single-call completion surface the scoring pipeline and the
// rubric extractor depend on. Implementations must request a JSON-object
// typed response; callers parse the returned content exactly once.
type Client interface {
	CompleteJSON(ctx context.Context, model, system, user string) (string, error)
}

type OpenAIClient struct {
	c *openai.Client
}

func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{c: openai.NewClient(apiKey)}
}

func (o *OpenAIClient) CompleteJSON(ctx context.Context, model, system, user string) (string, error) {
	resp, err := o.c.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
