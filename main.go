package main

import (
	_ "embed"

	"github.com/pubgo/funk/v2/buildinfo/version"

	"github.com/pubgo/geminiquick/bootstrap"
)

//go:embed .version/VERSION
var release string
var _ = version.SetVersion(release)

func main() {
	bootstrap.Main()
}
