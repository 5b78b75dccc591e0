package initcmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pubgo/funk/v2/assert"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/pathutil"
	"github.com/pubgo/funk/v2/recovery"
	"github.com/pubgo/redant"

	"github.com/pubgo/geminiquick/cmds/configcmd"
	"github.com/pubgo/geminiquick/configs"
)

func New() *redant.Command {
	return &redant.Command{
		Use:   "init",
		Short: "initialize config/env/local env files",
		Handler: func(ctx context.Context, i *redant.Invocation) error {
			defer recovery.Exit()

			cfgPath := configs.GetConfigPath()
			envPath := configs.GetEnvPath()
			localPath := configs.GetLocalEnvPath()

			assert.Must(os.MkdirAll(filepath.Dir(cfgPath), 0o755))

			if pathutil.IsNotExist(cfgPath) {
				assert.Must(os.WriteFile(cfgPath, configs.GetDefaultConfig(), 0o644))
				log.Info().Msgf("config created: %s", cfgPath)
			} else {
				log.Info().Msgf("config exists: %s", cfgPath)
			}

			if pathutil.IsNotExist(envPath) {
				assert.Must(os.WriteFile(envPath, configs.GetEnvConfig(), 0o644))
				log.Info().Msgf("env template created: %s", envPath)
			} else {
				log.Info().Msgf("env template exists: %s", envPath)
			}

			if pathutil.IsNotExist(localPath) {
				assert.Must(configcmd.WriteLocalEnv(localPath))
				log.Info().Msgf("local env created: %s, put GEMINI_API_KEY there", localPath)
			} else {
				log.Info().Msgf("local env exists: %s", localPath)
			}

			return nil
		},
	}
}
