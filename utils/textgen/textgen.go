package textgen

import (
	"context"
	"fmt"
	"strings"
)

type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

type Lister interface {
	ListModels(ctx context.Context) ([]Model, error)
}

// Request is one prompt sent to one model.
type Request struct {
	Model             string
	Prompt            string
	SystemInstruction string

	// Temperature is left to the service default when nil. An explicit 0 is
	// sent as the smallest positive float on the OpenAI-compatible backend.
	Temperature *float32

	// MaxOutputTokens is left to the service default when zero.
	MaxOutputTokens int32
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return &Error{Kind: ErrInvalidRequest, Message: "model identifier is empty"}
	}

	if strings.TrimSpace(r.Prompt) == "" {
		return &Error{Kind: ErrInvalidRequest, Message: "prompt is empty"}
	}

	if r.MaxOutputTokens < 0 {
		return &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf("max output tokens must not be negative, got %d", r.MaxOutputTokens)}
	}

	return nil
}

type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type Response struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason"`
	Usage        Usage  `json:"usage"`

	// Raw is the provider response, kept for --raw output.
	Raw any `json:"-"`
}

type Model struct {
	Name             string
	DisplayName      string
	Description      string
	InputTokenLimit  int
	OutputTokenLimit int
}
