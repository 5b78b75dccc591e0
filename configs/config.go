package configs

import (
	_ "embed"
	"fmt"
	"path"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/pubgo/funk/v2/assert"
	"gopkg.in/yaml.v3"
)

const LocalEnvFile = ".env"

type Version struct {
	Name string `yaml:"name"`
}

type EnvVar struct {
	Name string `yaml:"name"`
	Desc string `yaml:"desc"`
}

//go:embed default.yaml
var defaultConfig []byte

//go:embed env.yaml
var envConfig []byte

var GetConfigPath = sync.OnceValue(func() string {
	return assert.Exit1(xdg.ConfigFile("geminiquick/config.yaml"))
})

var GetEnvPath = sync.OnceValue(func() string {
	return path.Join(path.Dir(GetConfigPath()), "env.yaml")
})

// GetLocalEnvPath is the dotenv file in the working directory.
var GetLocalEnvPath = sync.OnceValue(func() string {
	return assert.Exit1(filepath.Abs(LocalEnvFile))
})

func GetDefaultConfig() []byte { return defaultConfig }

func GetEnvConfig() []byte { return envConfig }

func EnvVars() ([]EnvVar, error) {
	var vars []EnvVar
	if err := yaml.Unmarshal(envConfig, &vars); err != nil {
		return nil, fmt.Errorf("failed to decode env template: %w", err)
	}
	return vars, nil
}
