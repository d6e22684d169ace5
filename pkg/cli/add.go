package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	formset "github.com/goliatone/go-formset"
	pkgformset "github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/openapi"
	"github.com/goliatone/go-formset/pkg/prompt"
	"github.com/goliatone/go-formset/pkg/source"
)

var errNoGroups = errors.New("no repeatable groups found in page")

func addCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Append fragments to a repeatable group",
		Description: `Clone the group's template fragment, renumber it to the next index,
reset its fields and bump the TOTAL_FORMS counter. The page is only
written when every requested add succeeds.

Without --group on a terminal the groups found in the page are listed
and the chosen one is extended.`,
		Flags: []cli.Flag{
			inFlag(),
			configFlag(),
			&cli.StringFlag{
				Name:    "group",
				Aliases: []string{"g"},
				Usage:   "Group tag to extend (e.g. phone, email)",
			},
			&cli.IntFlag{
				Name:    "times",
				Aliases: []string{"n"},
				Value:   1,
				Usage:   "Number of fragments to add",
			},
			&cli.StringFlag{
				Name:  "schema",
				Usage: "OpenAPI document whose property defaults seed the reset policy",
			},
			&cli.StringFlag{
				Name:  "schema-name",
				Usage: "Component schema describing one row of the group (requires --schema)",
			},
			outFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			manager, err := a.openPage(ctx, cmd)
			if err != nil {
				return err
			}

			group := strings.TrimSpace(cmd.String("group"))
			times := cmd.Int("times")
			driver := a.interactive()

			if group == "" {
				if driver == nil {
					return errors.New("--group is required when stdin is not a terminal")
				}
				group, err = chooseGroup(ctx, driver, manager)
				if err != nil {
					return err
				}
				if !cmd.IsSet("times") {
					if times, err = askTimes(ctx, driver); err != nil {
						return err
					}
				}
			}
			if times < 1 {
				return fmt.Errorf("invalid --times %d: must be at least 1", times)
			}

			if err := a.applySchema(ctx, cmd, manager, group); err != nil {
				return err
			}

			results, err := manager.AddN(group, times)
			if err != nil {
				return fmt.Errorf("failed to add to group %q: %w", group, err)
			}
			for _, result := range results {
				a.logger.Debug("fragment added",
					"group", result.Group,
					"index", result.Index,
					"total", result.Total)
			}

			out := cmd.String("out")
			if driver != nil && out != "" {
				ok, err := confirmOverwrite(ctx, driver, out)
				if err != nil {
					return err
				}
				if !ok {
					return prompt.ErrAborted
				}
			}

			data, err := renderPage(manager)
			if err != nil {
				return err
			}
			a.logger.Info("group extended",
				"group", group,
				"added", len(results),
				"total", results[len(results)-1].Total)
			return a.writeOutput(out, data)
		},
	}
}

func chooseGroup(ctx context.Context, driver prompt.Driver, manager *pkgformset.Manager) (string, error) {
	states := pkgformset.Present(manager.Discover())
	if len(states) == 0 {
		return "", errNoGroups
	}
	options := make([]string, len(states))
	for i, state := range states {
		options[i] = fmt.Sprintf("%s (%d rows)", state.Group, state.Count)
	}
	choice, err := driver.Select(ctx, prompt.SelectConfig{
		Message: "Which group should get a new row?",
		Options: options,
	})
	if err != nil {
		return "", err
	}
	if choice < 0 || choice >= len(states) {
		return "", fmt.Errorf("invalid group selection %d", choice)
	}
	return states[choice].Group, nil
}

func askTimes(ctx context.Context, driver prompt.Driver) (int, error) {
	answer, err := driver.Input(ctx, prompt.InputConfig{
		Message:   "How many rows?",
		Default:   "1",
		Validator: prompt.PositiveInt,
	})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

func confirmOverwrite(ctx context.Context, driver prompt.Driver, path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return true, nil
	}
	return driver.Confirm(ctx, prompt.ConfirmConfig{
		Message: fmt.Sprintf("Overwrite %s?", path),
		Default: false,
	})
}

// applySchema replaces the group's reset policy with one derived from
// --schema when set.
func (a *app) applySchema(ctx context.Context, cmd *cli.Command, manager *pkgformset.Manager, group string) error {
	schemaPath := strings.TrimSpace(cmd.String("schema"))
	schemaName := strings.TrimSpace(cmd.String("schema-name"))
	if schemaPath == "" && schemaName == "" {
		return nil
	}
	if schemaPath == "" || schemaName == "" {
		return errors.New("--schema and --schema-name must be used together")
	}

	doc, err := formset.NewLoader().Load(ctx, source.FromFile(schemaPath))
	if err != nil {
		return err
	}
	policy, err := openapi.ResetPolicyFromDocument(ctx, doc, schemaName)
	if err != nil {
		return err
	}

	registry := manager.Registry()
	cfg, err := registry.Get(group)
	if err != nil {
		return err
	}
	cfg.Reset = mergePolicy(cfg.Reset, policy)
	if err := registry.Replace(cfg); err != nil {
		return err
	}
	a.logger.Debug("reset policy from schema",
		"group", group,
		"schema", schemaName,
		"fields", len(policy.Fields))
	return nil
}

// mergePolicy overlays the schema's field values and kept hidden fields on
// the group's policy. Default and DeleteField stay as configured.
func mergePolicy(base, schema model.ResetPolicy) model.ResetPolicy {
	merged := base
	merged.Fields = make(map[string]string, len(base.Fields)+len(schema.Fields))
	for name, value := range base.Fields {
		merged.Fields[name] = value
	}
	for name, value := range schema.Fields {
		merged.Fields[name] = value
	}
	merged.KeepHidden = append([]string(nil), base.KeepHidden...)
	for _, name := range schema.KeepHidden {
		if !base.KeepsHidden(name) {
			merged.KeepHidden = append(merged.KeepHidden, name)
		}
	}
	return merged
}
