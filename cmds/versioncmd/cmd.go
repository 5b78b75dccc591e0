package versioncmd

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/pubgo/funk/v2/buildinfo/version"
	"github.com/pubgo/funk/v2/recovery"
	"github.com/pubgo/funk/v2/running"
	"github.com/pubgo/redant"
)

const genaiModule = "google.golang.org/genai"

func New() *redant.Command {
	return &redant.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "version info",
		Handler: func(ctx context.Context, i *redant.Invocation) error {
			defer recovery.Exit()
			fmt.Println("project:", version.Project())
			fmt.Println("version:", version.Version())
			fmt.Println("commit-id:", version.CommitID())
			fmt.Println("build-time:", version.BuildTime())
			fmt.Println("device-id:", running.DeviceID)
			fmt.Println("go:", runtime.Version(), runtime.GOOS+"/"+runtime.GOARCH)
			fmt.Println("genai:", ModuleVersion(genaiModule))
			return nil
		},
	}
}

// ModuleVersion reports the linked version of a dependency, so the
// client library can be checked without a package manager.
func ModuleVersion(path string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, dep := range info.Deps {
		if dep.Path != path {
			continue
		}
		if dep.Replace != nil {
			return dep.Replace.Version
		}
		return dep.Version
	}
	return "not linked"
}
