package cli

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/visibility"
)

func toggleCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "toggle",
		Usage: "Flip the hidden state of page elements",
		Description: `Invert the hidden attribute on every --id, so the view that was
hidden shows and the other hides. Without --id the profile page's
primary email view and edit panels are toggled.

--show forces the named element visible and every --id hidden.
Nothing is written when an id is missing.`,
		Flags: []cli.Flag{
			inFlag(),
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Element id to toggle (repeatable)",
			},
			&cli.StringFlag{
				Name:  "show",
				Usage: "Element id to show while hiding every --id",
			},
			outFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := a.openPage(ctx, cmd)
			if err != nil {
				return err
			}
			doc := manager.Document()

			ids := cmd.StringSlice("id")
			show := strings.TrimSpace(cmd.String("show"))
			switch {
			case show != "":
				err = visibility.Exclusive(doc, show, ids...)
			case len(ids) == 0:
				ids = render.ToggleIDs
				fallthrough
			default:
				err = visibility.Toggle(doc, ids...)
			}
			if err != nil {
				return err
			}
			a.logger.Debug("visibility updated", "show", show, "ids", ids)

			data, err := renderPage(manager)
			if err != nil {
				return err
			}
			return a.writeOutput(cmd.String("out"), data)
		},
	}
}
