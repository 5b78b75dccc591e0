package openaiclient

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"

	"github.com/pubgo/geminiquick/utils/textgen"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

const DefaultTimeout = 60 * time.Second

type Config struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Client struct {
	cfg    *Config
	client *openai.Client
}

func New(cfg *Config) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &textgen.Error{
			Kind:    textgen.ErrMissingCredential,
			Message: "set GEMINI_API_KEY or llm.openai.api_key",
		}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimSuffix(lo.Ternary(cfg.BaseURL != "", cfg.BaseURL, DefaultBaseURL), "/")
	config.HTTPClient = &http.Client{Timeout: lo.Ternary(cfg.Timeout > 0, cfg.Timeout, DefaultTimeout)}

	return &Client{cfg: cfg, client: openai.NewClientWithConfig(config)}, nil
}

func (c *Client) Generate(ctx context.Context, req textgen.Request) (*textgen.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var messages []openai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  messages,
		MaxTokens: int(req.MaxOutputTokens),
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
		// go-openai drops a zero temperature from the request body.
		if chatReq.Temperature == 0 {
			chatReq.Temperature = math.SmallestNonzeroFloat32
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classify(ctx, err)
	}

	if len(resp.Choices) == 0 {
		return nil, &textgen.Error{Kind: textgen.ErrEmptyResponse, Message: "no choices returned"}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonContentFilter {
		return nil, &textgen.Error{Kind: textgen.ErrBlocked, Message: "content filter"}
	}

	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, &textgen.Error{Kind: textgen.ErrEmptyResponse, Message: "model responded without any text output"}
	}

	return &textgen.Response{
		Text:         choice.Message.Content,
		Model:        lo.Ternary(resp.Model != "", resp.Model, req.Model),
		FinishReason: string(choice.FinishReason),
		Usage: textgen.Usage{
			PromptTokens: resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
		Raw: resp,
	}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]textgen.Model, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, classify(ctx, err)
	}

	return lo.Map(list.Models, func(m openai.Model, _ int) textgen.Model {
		return textgen.Model{
			Name:        strings.TrimPrefix(m.ID, "models/"),
			DisplayName: m.ID,
			Description: fmt.Sprintf("owned by %s", m.OwnedBy),
		}
	}), nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return textgen.Classify(apiErr.HTTPStatusCode, apiErr.Type, apiErr.Message, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return textgen.Classify(reqErr.HTTPStatusCode, "", http.StatusText(reqErr.HTTPStatusCode), err)
	}

	return &textgen.Error{Kind: textgen.ErrNetwork, Err: err}
}
