package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pubgo/funk/v2/assert"
	"github.com/pubgo/funk/v2/config"
	"github.com/pubgo/funk/v2/env"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/pathutil"
	"github.com/pubgo/funk/v2/running"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pubgo/geminiquick/configs"
	"github.com/pubgo/geminiquick/runner"
	"github.com/pubgo/geminiquick/utils/installer"
	"github.com/pubgo/geminiquick/utils/llmbackend"
)

type configProvider struct {
	Version    *configs.Version   `yaml:"version"`
	LLM        *llmbackend.Config `yaml:"llm"`
	Quickstart *runner.Config     `yaml:"quickstart"`
	Install    *installer.Config  `yaml:"install"`
}

const debugEnv = "GEMINIQUICK_DEBUG"

func initConfig(debugFlag bool) {
	if localEnv := configs.GetLocalEnvPath(); !pathutil.IsNotExist(localEnv) {
		env.LoadFiles(localEnv).Must()
	}

	debug := debugEnabled(debugFlag)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	slog.SetDefault(slog.New(log.NewSlog(log.GetLogger(""))))
	log.SetEnableChecker(func(ctx context.Context, lvl log.Level, name, message string, fields log.Fields) bool {
		if debug {
			return true
		}

		if name == "dix" || name == "env" || fields["module"] == "env" {
			return false
		}
		return true
	})

	configPath := configs.GetConfigPath()
	envPath := configs.GetEnvPath()
	if pathutil.IsNotExist(configPath) {
		writeDefaults(configPath, envPath)
		config.SetConfigPath(configPath)
		return
	}

	type versionConfigProvider struct {
		Version *configs.Version `yaml:"version"`
	}
	var cfg versionConfigProvider
	config.LoadFromPath(&cfg, configPath)

	var defaultCfg versionConfigProvider
	assert.Must(yaml.Unmarshal(configs.GetDefaultConfig(), &defaultCfg))
	if cfg.Version == nil || cfg.Version.Name == "" || defaultCfg.Version.Name != cfg.Version.Name {
		backup := assert.Must1(backupConfig(configPath))
		log.Warn().Str("path", configPath).Str("backup", backup).Msg("config version changed, rewriting defaults")
		writeDefaults(configPath, envPath)
	}

	config.SetConfigPath(configPath)
}

// debugEnabled reports whether --debug, GEMINIQUICK_DEBUG or the funk debug
// switch asks for debug logs.
func debugEnabled(flag bool) bool {
	if flag || running.Debug.Value() {
		return true
	}

	on, err := strconv.ParseBool(env.Get(debugEnv))
	return err == nil && on
}

// backupConfig copies the config to <path>.bak before a rewrite.
func backupConfig(configPath string) (string, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", err
	}

	backup := configPath + ".bak"
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		return "", err
	}
	return backup, nil
}

func writeDefaults(configPath, envPath string) {
	assert.Must(os.MkdirAll(filepath.Dir(configPath), 0o755))
	assert.Must(os.WriteFile(configPath, configs.GetDefaultConfig(), 0o644))
	assert.Must(os.WriteFile(envPath, configs.GetEnvConfig(), 0o644))
}

func parseConfig(path string) configProvider {
	var cfg configProvider
	config.LoadFromPath(&cfg, path)
	return cfg
}
