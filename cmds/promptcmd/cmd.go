package promptcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pubgo/dix/v2"
	"github.com/pubgo/dix/v2/dixcontext"
	"github.com/pubgo/funk/v2/errors"
	"github.com/pubgo/funk/v2/pretty"
	"github.com/pubgo/redant"
	"github.com/yarlson/tap"

	"github.com/pubgo/geminiquick/runner"
	"github.com/pubgo/geminiquick/utils"
	"github.com/pubgo/geminiquick/utils/installer"
	"github.com/pubgo/geminiquick/utils/llmbackend"
)

type cmdParams struct {
	LLM        *llmbackend.Config
	Quickstart *runner.Config
	Install    *installer.Config
}

func New() *redant.Command {
	var flags = new(struct {
		text   string
		model  string
		system string
		raw    bool
	})

	return &redant.Command{
		Use:   "prompt",
		Short: "send one prompt, read from --text, stdin or an interactive input",
		Options: []redant.Option{
			{
				Flag:        "text",
				Description: "Prompt text.",
				Value:       redant.StringOf(&flags.text),
			},
			{
				Flag:        "model",
				Description: "Model identifier, default from config.",
				Value:       redant.StringOf(&flags.model),
			},
			{
				Flag:        "system",
				Description: "System instruction.",
				Value:       redant.StringOf(&flags.system),
			},
			{
				Flag:        "raw",
				Description: "Dump the provider response after the text.",
				Value:       redant.BoolOf(&flags.raw),
			},
		},
		Handler: func(ctx context.Context, i *redant.Invocation) error {
			di := dixcontext.Get(ctx)
			var params cmdParams
			params = dix.Inject(di, params)

			req := params.Quickstart.Request()
			prompt, err := readPrompt(ctx, flags.text, os.Stdin)
			if err != nil {
				return errors.WrapCaller(err)
			}
			req.Prompt = prompt
			if flags.model != "" {
				req.Model = flags.model
			}
			if flags.system != "" {
				req.SystemInstruction = flags.system
			}

			backend, err := llmbackend.New(ctx, params.LLM)
			if err != nil {
				return errors.WrapCaller(err)
			}

			r := runner.New(backend,
				runner.WithInstaller(installer.New(params.Install)),
				runner.WithProgress(utils.ProgressWriter()),
			)
			resp, err := r.Run(ctx, req)
			if err != nil {
				return errors.WrapCaller(err)
			}

			if flags.raw {
				fmt.Println()
				pretty.Println(resp.Raw)
			}
			return nil
		},
	}
}

// readPrompt prefers the flag, then piped stdin, then asks on the terminal.
func readPrompt(ctx context.Context, text string, stdin *os.File) (string, error) {
	if strings.TrimSpace(text) != "" {
		return text, nil
	}

	if !utils.IsTerminal(stdin) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	prompt := strings.TrimSpace(tap.Text(ctx, tap.TextOptions{
		Message:     "prompt:",
		Placeholder: "Ask Gemini anything...",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("add a prompt so Gemini knows what to respond to")
			}
			return nil
		},
	}))
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return prompt, nil
}
