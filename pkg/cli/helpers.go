package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	formset "github.com/goliatone/go-formset"
	"github.com/goliatone/go-formset/pkg/config"
	pkgformset "github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/source"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func inFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "in",
		Aliases:  []string{"i"},
		Usage:    "HTML page to read",
		Required: true,
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Group configuration file (JSON or YAML) overlaid on the presets",
		Sources: cli.EnvVars("FORMSET_CONFIG"),
	}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Write the result to a file instead of stdout",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"t"},
		Value:   formatJSON,
		Usage:   "Output format (json, yaml)",
	}
}

func parseOutputFormat(cmd *cli.Command) (string, error) {
	format := strings.ToLower(strings.TrimSpace(cmd.String("format")))
	switch format {
	case formatJSON, formatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format: %q", cmd.String("format"))
	}
}

func loadStore(path string) (*config.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	return config.LoadFile(path)
}

// openPage loads --in and --config and binds a manager to the page.
func (a *app) openPage(ctx context.Context, cmd *cli.Command, options ...pkgformset.Option) (*pkgformset.Manager, error) {
	store, err := loadStore(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	manager, err := formset.Open(ctx, source.FromFile(cmd.String("in")),
		formset.WithConfig(store),
		formset.WithLogger(a.logger),
		formset.WithManagerOptions(options...),
	)
	if err != nil {
		return nil, err
	}
	return manager, nil
}

func renderPage(manager *pkgformset.Manager) ([]byte, error) {
	var buf bytes.Buffer
	if err := pkgformset.Render(&buf, manager.Document()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to the command writer when path is
// empty.
func (a *app) writeOutput(path string, data []byte) error {
	if strings.TrimSpace(path) == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	a.logger.Info("wrote output", "path", path, "bytes", len(data))
	return nil
}

func encode(w io.Writer, format string, value any) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
}
