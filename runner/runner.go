package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/result"
	"github.com/rs/zerolog"

	"github.com/pubgo/geminiquick/utils"
	"github.com/pubgo/geminiquick/utils/installer"
	"github.com/pubgo/geminiquick/utils/textgen"
)

const (
	DefaultModel  = "gemini-2.5-flash"
	DefaultPrompt = "Hello from Gemini!"
)

var ErrDependency = errors.New("dependency step failed")

type Config struct {
	Model             string   `yaml:"model"`
	Prompt            string   `yaml:"prompt"`
	SystemInstruction string   `yaml:"system_instruction"`
	Temperature       *float32 `yaml:"temperature"`
	MaxOutputTokens   int32    `yaml:"max_output_tokens"`
}

// Request is the fixed request the quickstart sends.
func (c *Config) Request() textgen.Request {
	req := textgen.Request{Model: DefaultModel, Prompt: DefaultPrompt}
	if c == nil {
		return req
	}

	if c.Model != "" {
		req.Model = c.Model
	}
	if c.Prompt != "" {
		req.Prompt = c.Prompt
	}
	req.SystemInstruction = c.SystemInstruction
	req.Temperature = c.Temperature
	req.MaxOutputTokens = c.MaxOutputTokens
	return req
}

type Option func(r *Runner)

func WithInstaller(i installer.Installer) Option {
	return func(r *Runner) { r.installer = i }
}

func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithProgress shows a spinner on w while the request is in flight.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) { r.progress = w }
}

// Runner runs install, call and print once. It never retries.
type Runner struct {
	installer installer.Installer
	gen       textgen.Generator
	out       io.Writer
	progress  io.Writer
}

func New(gen textgen.Generator, opts ...Option) *Runner {
	r := &Runner{
		installer: installer.Noop{},
		gen:       gen,
		out:       os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Run(ctx context.Context, req textgen.Request) (*textgen.Response, error) {
	if err := r.installer.Ensure(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDependency, err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	log.Debug().Str("model", req.Model).Int("prompt_len", len(req.Prompt)).Msg("send prompt")

	var (
		resp *textgen.Response
		err  error
	)
	utils.Spin(r.progress, req.Model+": ", func() (res result.Result[any]) {
		resp, err = r.gen.Generate(ctx, req)
		return
	})
	if err != nil {
		log.Debug().Func(func(e *zerolog.Event) {
			e.Str("model", req.Model)
			e.Str("dur", utils.HumanDuration(time.Since(now)))
			e.Bool("retryable", textgen.Retryable(err))
			e.Msg(err.Error())
		})
		return nil, err
	}

	log.Debug().Func(func(e *zerolog.Event) {
		e.Str("model", resp.Model)
		e.Str("finish_reason", resp.FinishReason)
		e.Any("usage", resp.Usage)
		e.Str("dur", utils.HumanDuration(time.Since(now)))
		e.Msg("prompt answered")
	})

	if _, err := fmt.Fprintln(r.out, resp.Text); err != nil {
		return nil, fmt.Errorf("failed to write response: %w", err)
	}
	return resp, nil
}
