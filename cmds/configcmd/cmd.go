package configcmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/joho/godotenv"
	"github.com/pubgo/funk/v2/assert"
	"github.com/pubgo/funk/v2/env"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/pathutil"
	"github.com/pubgo/funk/v2/pretty"
	"github.com/pubgo/funk/v2/recovery"
	"github.com/pubgo/funk/v2/result"
	"github.com/pubgo/redant"
	"github.com/samber/lo"

	"github.com/pubgo/geminiquick/configs"
	"github.com/pubgo/geminiquick/utils"
)

func New() *redant.Command {
	return &redant.Command{
		Use:   "config",
		Short: "config management",
		Children: []*redant.Command{
			{
				Use:   "edit",
				Short: "edit config, env or local env file, args: [config|env|local], default:config",
				Handler: func(ctx context.Context, i *redant.Invocation) error {
					command := i.Command
					args := command.Args
					if len(args) == 0 {
						utils.Edit(configs.GetConfigPath())
						return nil
					}

					switch args[0].Value.String() {
					case "config":
						utils.Edit(configs.GetConfigPath())
					case "env":
						utils.Edit(configs.GetEnvPath())
					case "local":
						if pathutil.IsNotExist(configs.GetLocalEnvPath()) {
							assert.Must(WriteLocalEnv(configs.GetLocalEnvPath()))
						}
						utils.Edit(configs.GetLocalEnvPath())
					default:
						return fmt.Errorf("unknown config file %q", args[0].Value.String())
					}

					return nil
				},
			},

			{
				Use:   "show",
				Short: "show config, env or local env file, args: [config|env|local], default:config",
				Handler: func(ctx context.Context, i *redant.Invocation) error {
					defer recovery.Exit()

					command := i.Command
					args := command.Args
					if len(args) == 0 || args[0].Value.String() == "config" {
						cfgPath := configs.GetConfigPath()
						log.Info().Msgf("config path: %s", cfgPath)

						cfgData := assert.Must1(os.ReadFile(cfgPath))
						cfgData = assert.Must1(envsubst.Bytes(cfgData))

						log.Info().Msgf("config data: \n%s", MaskSecrets(string(cfgData), currentSecrets()))
						return nil
					}

					switch args[0].Value.String() {
					case "env":
						log.Info().Msgf("env path: %s", configs.GetEnvPath())
						vars := assert.Must1(configs.EnvVars())
						pretty.Println(lo.Map(vars, func(v configs.EnvVar, _ int) map[string]string {
							return map[string]string{"name": v.Name, "desc": v.Desc, "value": Mask(env.Get(v.Name))}
						}))
					case "local":
						log.Info().Msgf("local env path: %s", configs.GetLocalEnvPath())
						data := result.Wrap(os.ReadFile(configs.GetLocalEnvPath())).Unwrap()
						dataMap := result.Wrap(godotenv.UnmarshalBytes(data)).Unwrap()
						pretty.Println(lo.MapValues(dataMap, func(v string, _ string) string { return Mask(v) }))
					default:
						return fmt.Errorf("unknown config file %q", args[0].Value.String())
					}

					return nil
				},
			},
		},
	}
}

// WriteLocalEnv writes a dotenv file listing every known variable.
func WriteLocalEnv(path string) error {
	vars, err := configs.EnvVars()
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, v := range vars {
		fmt.Fprintf(&b, "# %s\n%s=%q\n", v.Desc, v.Name, env.Get(v.Name))
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// Mask keeps the first four characters of a secret.
func Mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func MaskSecrets(text string, secrets []string) string {
	for _, s := range secrets {
		if s == "" {
			continue
		}
		text = strings.ReplaceAll(text, s, Mask(s))
	}
	return text
}

func currentSecrets() []string {
	vars := assert.Must1(configs.EnvVars())
	return lo.Map(vars, func(v configs.EnvVar, _ int) string { return env.Get(v.Name) })
}
