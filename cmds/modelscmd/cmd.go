package modelscmd

import (
	"context"
	"os"
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/olekukonko/tablewriter"
	"github.com/pubgo/dix/v2"
	"github.com/pubgo/dix/v2/dixcontext"
	"github.com/pubgo/funk/v2/assert"
	"github.com/pubgo/funk/v2/errors"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/result"
	"github.com/pubgo/redant"
	"github.com/samber/lo"

	"github.com/pubgo/geminiquick/utils"
	"github.com/pubgo/geminiquick/utils/llmbackend"
	"github.com/pubgo/geminiquick/utils/textgen"
)

type cmdParams struct {
	LLM *llmbackend.Config
}

func New() *redant.Command {
	var flags = new(struct {
		filter string
	})

	return &redant.Command{
		Use:   "models",
		Short: "list models available to the configured credential",
		Options: []redant.Option{
			{
				Flag:        "filter",
				Description: "Fuzzy filter on the model name, e.g. flash.",
				Value:       redant.StringOf(&flags.filter),
			},
		},
		Handler: func(ctx context.Context, i *redant.Invocation) error {
			di := dixcontext.Get(ctx)
			var params cmdParams
			params = dix.Inject(di, params)

			backend, err := llmbackend.New(ctx, params.LLM)
			if err != nil {
				return errors.WrapCaller(err)
			}

			var models []textgen.Model
			utils.Spin(utils.ProgressWriter(), "list models: ", func() (r result.Result[any]) {
				models, err = backend.ListModels(ctx)
				return
			})
			if err != nil {
				return errors.WrapCaller(err)
			}

			models = Filter(models, flags.filter)
			log.Info().Int("count", len(models)).Msg("models")

			tt := tablewriter.NewWriter(os.Stdout)
			tt.Header([]string{"Name", "Display Name", "Input Tokens", "Output Tokens"})
			for _, m := range models {
				assert.Must(tt.Append([]string{
					m.Name,
					m.DisplayName,
					formatLimit(m.InputTokenLimit),
					formatLimit(m.OutputTokenLimit),
				}))
			}
			return tt.Render()
		},
	}
}

// Filter keeps the models whose name fuzzily matches filter, best match first.
func Filter(models []textgen.Model, filter string) []textgen.Model {
	if filter == "" {
		return models
	}

	names := lo.Map(models, func(m textgen.Model, _ int) string { return m.Name })
	ranks := fuzzy.RankFindFold(filter, names)
	sort.Stable(ranks)

	return lo.Map([]fuzzy.Rank(ranks), func(r fuzzy.Rank, _ int) textgen.Model { return models[r.OriginalIndex] })
}

func formatLimit(n int) string {
	if n <= 0 {
		return "-"
	}
	return strconv.Itoa(n)
}
