// Package llm is the chat boundary. One client speaks the OpenAI chat
// completions API, which covers hosted endpoints and local servers
// (Ollama and friends expose the same surface under /v1).
package llm

import (
	"context"
	"fmt"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Message is one turn of role-tagged conversation history.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Chatter is what handlers see of the LLM.
type Chatter interface {
	Chat(ctx context.Context, history []Message, system string) (string, error)
}

type Client struct {
	api   openai.Client
	model string
}

// NewClient builds a chat client. baseURL may be empty for the hosted
// default; httpClient may be nil, or a proxied client from
// internal/proxy.
func NewClient(apiKey, baseURL, model string, httpClient *http.Client) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &Client{
		api:   openai.NewClient(opts...),
		model: model,
	}
}

func (c *Client) Chat(ctx context.Context, history []Message, system string) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	msgs = append(msgs, openai.SystemMessage(system))
	for _, m := range history {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.AssistantMessage(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openai.ChatModel(c.model),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty message content")
	}
	return content, nil
}
