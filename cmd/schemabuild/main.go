package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/schemabuild/cmd/schemabuild/commands"
	"git.home.luguber.info/inful/schemabuild/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("schemabuild"),
		kong.Description("Compile a tree of schema declaration files into a validated, canonical JSON artifact."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	if err := ctx.Run(&commands.Global{}, cli); err != nil {
		fmt.Fprintf(os.Stderr, "schemabuild: %v\n", err)
		os.Exit(1)
	}
}
