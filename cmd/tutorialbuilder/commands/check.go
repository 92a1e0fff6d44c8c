package commands

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tutorialbuilder/internal/linkverify"
	"git.home.luguber.info/inful/tutorialbuilder/internal/logfields"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct{}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	return checkSite(g, cfg.DestRoot())
}

func checkSite(g *Global, destRoot string) error {
	broken, err := linkverify.VerifySite(destRoot)
	if err != nil {
		return err
	}
	for _, b := range broken {
		_, _ = fmt.Fprintf(g.Out, "%s: %s (%s)\n", b.Page, b.Link.URL, b.Reason)
	}
	if len(broken) > 0 {
		return ferrors.NewError(ferrors.CategoryBuild, "broken links found").
			WithContext("count", len(broken)).
			Build()
	}
	g.Logger.Info("No broken links found", logfields.Path(destRoot))
	return nil
}
