package quickstartcmd

import (
	"context"

	"github.com/pubgo/dix/v2"
	"github.com/pubgo/dix/v2/dixcontext"
	"github.com/pubgo/funk/v2/errors"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/redant"

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

// Handler sends the configured prompt once and prints the answer.
// It takes no arguments.
func Handler(ctx context.Context, i *redant.Invocation) error {
	command := i.Command
	if len(command.Args) > 0 {
		log.Error(ctx).Msgf("unknown command:%v", command.Args)
		return redant.DefaultHelpFn()(ctx, i)
	}

	di := dixcontext.Get(ctx)
	var params cmdParams
	params = dix.Inject(di, params)

	backend, err := llmbackend.New(ctx, params.LLM)
	if err != nil {
		return errors.WrapCaller(err)
	}

	r := runner.New(backend,
		runner.WithInstaller(installer.New(params.Install)),
		runner.WithProgress(utils.ProgressWriter()),
	)
	if _, err := r.Run(ctx, params.Quickstart.Request()); err != nil {
		return errors.WrapCaller(err)
	}
	return nil
}
