package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bitfield/script"
	"github.com/briandowns/spinner"
	"github.com/charmbracelet/x/term"
	"github.com/docker/go-units"
	"github.com/pubgo/funk/v2/assert"
	"github.com/pubgo/funk/v2/errors"
	"github.com/pubgo/funk/v2/log"
	"github.com/pubgo/funk/v2/result"
	"mvdan.cc/sh/v3/shell"
)

func UsageDesc(format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	return strings.ToUpper(s[0:1]) + s[1:]
}

func Context() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
			cancel()
		}
	}()
	return ctx
}

func IsHelp() bool {
	help := strings.TrimSpace(os.Args[len(os.Args)-1])
	if strings.HasSuffix(help, "--help") || strings.HasSuffix(help, "-h") {
		return true
	}
	return false
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool { return term.IsTerminal(f.Fd()) }

// ProgressWriter is stderr when it is a terminal, nil otherwise.
func ProgressWriter() io.Writer {
	if IsTerminal(os.Stderr) {
		return os.Stderr
	}
	return nil
}

func HumanDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return units.HumanDuration(d)
}

func ShellExec(ctx context.Context, args ...string) error {
	now := time.Now()
	out := ShellExecOutput(ctx, args...)
	if err := out.GetErr(); err != nil {
		return err
	}

	if res := out.Unwrap(); res != "" {
		log.Info().Str("dur", HumanDuration(time.Since(now))).Msgf("shell result: \n%s\n", res)
	}

	return nil
}

// ShellExecOutput runs args through the user's shell. A non-zero exit is an
// error carrying the combined output.
func ShellExecOutput(ctx context.Context, args ...string) (r result.Result[string]) {
	cmdLine := strings.TrimSpace(strings.Join(args, " "))
	if cmdLine == "" {
		return r.WithErr(errors.Errorf("empty shell command"))
	}

	log.Info().Msgf("shell: %s", cmdLine)

	if sh := getShell(); sh != "" {
		args = []string{sh, "-c", cmdLine}
	} else {
		fields, err := shell.Fields(cmdLine, nil)
		if err != nil {
			log.Err(err, ctx).Str("shell", cmdLine).Msg("failed to parse shell command")
			return r.WithErr(errors.WrapCaller(err))
		}
		if len(fields) == 0 {
			return r.WithErr(errors.Errorf("empty shell command"))
		}
		args = fields
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.WaitDelay = time.Second
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.Err(err, ctx).Str("shell", cmdLine).Msg("shell error\n" + string(output))
		return r.WithErr(fmt.Errorf("%s: %w: %s", cmdLine, err, strings.TrimSpace(string(output))))
	}

	return r.WithValue(strings.TrimSpace(string(output)))
}

func Spin[T any](w io.Writer, name string, do func() result.Result[T]) result.Result[T] {
	if w == nil {
		return do()
	}

	s := spinner.New(spinner.CharSets[35], 100*time.Millisecond, spinner.WithWriter(w), func(s *spinner.Spinner) { s.Prefix = name })
	s.Start()
	defer s.Stop()
	return do()
}

func getShell() string {
	sh := "bash"
	_, err := exec.LookPath(sh)
	if err == nil {
		return sh
	}

	sh = "sh"
	_, err = exec.LookPath(sh)
	if err == nil {
		return sh
	}

	return ""
}

var editors = []string{"zed", "subl", "vim", "code", "nano", "vi", "open"}

func GetEditor() (r result.Result[string]) {
	if e := strings.TrimSpace(os.Getenv("EDITOR")); e != "" {
		return r.WithValue(e)
	}

	for _, editor := range editors {
		_, err := exec.LookPath(editor)
		if err == nil {
			return r.WithValue(editor)
		}
	}
	return r.WithErr(errors.Errorf("no editor found in %q", editors))
}

func Edit(editPath string) {
	log.Info().Msgf("edit path: %s", editPath)
	editor := GetEditor().Unwrap()
	path := assert.Exit1(filepath.Abs(editPath))
	shellData := fmt.Sprintf(`%s "%s"`, editor, path)
	log.Info().Msg(shellData)
	assert.Exit1(script.Exec(shellData).Stdout())
}

func IsErrSignalInterrupt(err error) bool {
	if err == nil {
		return false
	}

	exitErr, ok := errors.AsA[exec.ExitError](err)
	return ok && strings.Contains(exitErr.String(), "signal: interrupt")
}
