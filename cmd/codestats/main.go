package main

import (
	"os"

	"github.com/anivanovic/codestats/pkg/cmd"
	"github.com/anivanovic/codestats/pkg/statserr"
)

func main() {
	app := cmd.NewApp(os.Stdout, os.Stderr)
	os.Exit(statserr.ExitCode(app.Execute(os.Args[1:])))
}
