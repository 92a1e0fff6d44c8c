package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/tutorialbuilder/cmd/tutorialbuilder/commands"
	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}

	parser := kong.Must(&cli,
		kong.Name("tutorialbuilder"),
		kong.Description("Incrementally render a tree of markdown tutorials into a static site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Bind(global),
	)
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	if err := ctx.Run(global, &cli); err != nil {
		ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger).HandleError(err)
	}
}
