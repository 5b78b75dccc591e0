package genaiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
	"google.golang.org/genai"

	"github.com/pubgo/geminiquick/utils/textgen"
)

const DefaultTimeout = 60 * time.Second

type Config struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
}

type Client struct {
	cfg    *Config
	client *genai.Client
}

// New builds a Gemini API client. The key is only checked for presence;
// the service decides whether it is valid on the first call.
func New(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &textgen.Error{
			Kind:    textgen.ErrMissingCredential,
			Message: "set GEMINI_API_KEY or llm.gemini.api_key",
		}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: lo.Ternary(cfg.Timeout > 0, cfg.Timeout, DefaultTimeout)},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{cfg: cfg, client: client}, nil
}

func (c *Client) Generate(ctx context.Context, req textgen.Request) (*textgen.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), contentConfig(req))
	if err != nil {
		return nil, classify(ctx, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, &textgen.Error{
			Kind:    textgen.ErrBlocked,
			Message: "block reason " + string(resp.PromptFeedback.BlockReason),
		}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &textgen.Error{Kind: textgen.ErrEmptyResponse, Message: "model responded without any text output"}
	}

	out := &textgen.Response{
		Text:  text,
		Model: req.Model,
		Raw:   resp,
	}

	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage = textgen.Usage{
			PromptTokens: int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}

	return out, nil
}

func (c *Client) ListModels(ctx context.Context) ([]textgen.Model, error) {
	var models []textgen.Model
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, classify(ctx, err)
		}

		models = append(models, textgen.Model{
			Name:             strings.TrimPrefix(m.Name, "models/"),
			DisplayName:      m.DisplayName,
			Description:      m.Description,
			InputTokenLimit:  int(m.InputTokenLimit),
			OutputTokenLimit: int(m.OutputTokenLimit),
		})
	}
	return models, nil
}

func contentConfig(req textgen.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	}

	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	return cfg
}

// classify keeps cancellation of the caller's context as is. API errors are
// mapped by status; anything else never reached the service.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return err
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return textgen.Classify(apiErr.Code, apiErr.Status, apiErr.Message, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return textgen.Classify(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Message, err)
	}

	return &textgen.Error{Kind: textgen.ErrNetwork, Err: err}
}
