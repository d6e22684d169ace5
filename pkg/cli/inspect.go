package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	pkgformset "github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/render"
	"github.com/goliatone/go-formset/pkg/visibility"
)

// Report is the inspect command output.
type Report struct {
	Source string                  `json:"source" yaml:"source"`
	Groups []pkgformset.GroupState `json:"groups" yaml:"groups"`
	// Hidden holds the hidden state of the edit toggle elements found in
	// the page.
	Hidden map[string]bool `json:"hidden,omitempty" yaml:"hidden,omitempty"`
}

func inspectCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Report the repeatable groups found in a page",
		Description: `List every registered group present in the page with its fragment
count, TOTAL_FORMS value, effective limit and the indices carried by
each fragment. A group is consistent when the counter matches the
fragment count and the indices run 0..n-1.

Use --all to include registered groups whose container is missing.`,
		Flags: []cli.Flag{
			inFlag(),
			configFlag(),
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Include groups whose container is not in the page",
			},
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			manager, err := a.openPage(ctx, cmd)
			if err != nil {
				return err
			}

			states := manager.Discover()
			if !cmd.Bool("all") {
				states = pkgformset.Present(states)
			}
			report := Report{
				Source: cmd.String("in"),
				Groups: states,
				Hidden: visibility.State(manager.Document(), render.ToggleIDs...),
			}
			if len(report.Hidden) == 0 {
				report.Hidden = nil
			}

			for _, state := range states {
				if state.Error == "" && !state.Consistent {
					a.logger.Warn("group is inconsistent",
						"group", state.Group,
						"count", state.Count,
						"counter", state.Counter)
				}
			}
			return encode(a.out, format, report)
		},
	}
}
