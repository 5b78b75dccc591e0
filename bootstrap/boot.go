package bootstrap

import (
	"context"
	"os"

	"github.com/pubgo/dix/v2"
	"github.com/pubgo/dix/v2/dixcontext"
	"github.com/pubgo/funk/v2/config"
	"github.com/pubgo/funk/v2/errors"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/recovery"
	"github.com/pubgo/redant"

	"github.com/pubgo/geminiquick/cmds/configcmd"
	"github.com/pubgo/geminiquick/cmds/initcmd"
	"github.com/pubgo/geminiquick/cmds/modelscmd"
	"github.com/pubgo/geminiquick/cmds/promptcmd"
	"github.com/pubgo/geminiquick/cmds/quickstartcmd"
	"github.com/pubgo/geminiquick/cmds/versioncmd"
	"github.com/pubgo/geminiquick/utils"
)

func Main() {
	run(
		versioncmd.New(),
		initcmd.New(),
		configcmd.New(),
		promptcmd.New(),
		modelscmd.New(),
	)
}

func run(cmds ...*redant.Command) {
	defer recovery.Exit(func(err error) error {
		exit(err)
		return err
	})

	var flags = new(struct {
		debug bool
	})

	app := &redant.Command{
		Use:      "geminiquick",
		Short:    "Send one prompt to Gemini and print the answer",
		Children: cmds,
		Handler:  quickstartcmd.Handler,
		Options: []redant.Option{
			{
				Flag:        "debug",
				Description: "Verbose logging, same as GEMINIQUICK_DEBUG=true.",
				Value:       redant.BoolOf(&flags.debug),
			},
		},
		Middleware: func(next redant.HandlerFunc) redant.HandlerFunc {
			return func(ctx context.Context, i *redant.Invocation) error {
				if utils.IsHelp() {
					return redant.DefaultHelpFn()(ctx, i)
				}

				initConfig(flags.debug)
				di := dix.New(dix.WithValuesNull())
				di.Provide(config.Load[configProvider])
				return next(dixcontext.Create(ctx, di), i)
			}
		},
	}

	if err := app.Run(utils.Context()); err != nil {
		exit(err)
	}
}

// exit ends the process without touching stdout: a cancelled run exits 0,
// any other failure is logged to stderr and exits 1.
func exit(err error) {
	if err == nil {
		return
	}

	if errors.Is(err, context.Canceled) || utils.IsErrSignalInterrupt(err) {
		os.Exit(0)
	}

	log.Err(err).Msg("failed to run command")
	os.Exit(1)
}
