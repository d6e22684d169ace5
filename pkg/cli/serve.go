package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-formset/pkg/server"
)

func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the profile page and fragment API",
		Description: `Start the HTTP server. Defaults come from the environment
(PORT, LOG_LEVEL, SHUTDOWN_TIMEOUT_SECONDS, FORMSET_CONFIG, CSRF_KEY);
flags override them.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "address",
				Usage: "Interface to listen on (default: all)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
			configFlag(),
			&cli.BoolFlag{
				Name:  "secure-cookies",
				Usage: "Mark the CSRF cookie Secure (serve behind TLS)",
			},
			&cli.StringSliceFlag{
				Name:  "trusted-origin",
				Usage: "Extra origin accepted by CSRF checks (repeatable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := serverConfig(cmd)
			if err != nil {
				return err
			}
			return server.Run(ctx, cfg, server.WithLogger(server.NewLogger(cfg.LogLevel)))
		},
	}
}

// serverConfig overlays the set flags on server.DefaultConfig.
func serverConfig(cmd *cli.Command) (*server.Config, error) {
	cfg := server.DefaultConfig()
	if cmd.IsSet("address") {
		cfg.Address = cmd.String("address")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}
	if cmd.IsSet("config") {
		cfg.ConfigPath = cmd.String("config")
	}
	if cmd.IsSet("secure-cookies") {
		cfg.SecureCookies = cmd.Bool("secure-cookies")
	}
	cfg.TrustedOrigins = append(cfg.TrustedOrigins, cmd.StringSlice("trusted-origin")...)
	if cmd.Root().IsSet("log-level") {
		level, err := parseLevel(cmd.Root().String("log-level"))
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid --port %d", cfg.Port)
	}
	return cfg, nil
}
