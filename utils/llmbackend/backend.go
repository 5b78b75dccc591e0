package llmbackend

import (
	"context"
	"fmt"
	"strings"

	"github.com/pubgo/funk/v2/env"
	"github.com/pubgo/funk/v2/strutil"

	"github.com/pubgo/geminiquick/utils/genaiclient"
	"github.com/pubgo/geminiquick/utils/openaiclient"
	"github.com/pubgo/geminiquick/utils/textgen"
)

const (
	Gemini = "gemini"
	OpenAI = "openai"
)

// CredentialEnvs are consulted in order when the config leaves the key empty.
var CredentialEnvs = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

type Config struct {
	Backend string               `yaml:"backend"`
	Gemini  *genaiclient.Config  `yaml:"gemini"`
	OpenAI  *openaiclient.Config `yaml:"openai"`
}

type Backend interface {
	textgen.Generator
	textgen.Lister
}

func New(ctx context.Context, cfg *Config) (Backend, error) {
	if cfg == nil {
		cfg = new(Config)
	}

	switch name := strings.ToLower(strings.TrimSpace(cfg.Backend)); name {
	case "", Gemini:
		c := cloneOr(cfg.Gemini)
		c.APIKey = ResolveAPIKey(c.APIKey)
		client, err := genaiclient.New(ctx, c)
		if err != nil {
			return nil, err
		}
		return client, nil
	case OpenAI:
		c := cloneOr(cfg.OpenAI)
		c.APIKey = ResolveAPIKey(c.APIKey)
		client, err := openaiclient.New(c)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q, want %q or %q", name, Gemini, OpenAI)
	}
}

// ResolveAPIKey returns key, or the first non-empty credential variable.
func ResolveAPIKey(key string) string {
	values := []string{strings.TrimSpace(key)}
	for _, name := range CredentialEnvs {
		values = append(values, strings.TrimSpace(env.Get(name)))
	}
	return strutil.FirstNotEmpty(values...)
}

func cloneOr[T any](c *T) *T {
	out := new(T)
	if c != nil {
		*out = *c
	}
	return out
}
