package installer

import (
	"context"
	"strings"
	"time"

	"github.com/pubgo/funk/v2/log"

	"github.com/pubgo/geminiquick/utils"
)

const DefaultTimeout = 5 * time.Minute

// Config describes an optional setup command run before the first API call.
// The client library is linked at build time, so the command is empty by default.
type Config struct {
	Command string        `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

type Installer interface {
	Ensure(ctx context.Context) error
}

func New(cfg *Config) Installer {
	if cfg == nil || strings.TrimSpace(cfg.Command) == "" {
		return Noop{}
	}
	return &Shell{Command: strings.TrimSpace(cfg.Command), Timeout: cfg.Timeout}
}

// Noop is used when the dependency is already present.
type Noop struct{}

func (Noop) Ensure(context.Context) error { return nil }

type Shell struct {
	Command string
	Timeout time.Duration
}

func (s *Shell) Ensure(ctx context.Context) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res := utils.ShellExecOutput(ctx, s.Command)
	if err := res.GetErr(); err != nil {
		return err
	}

	if out := res.Unwrap(); out != "" {
		log.Debug().Str("command", s.Command).Msg(out)
	}
	return nil
}
