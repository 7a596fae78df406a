package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/api"
	"github.com/hay-kot/tabula/internal/backend"
	"github.com/hay-kot/tabula/internal/printer"
)

type ServeCmd struct {
	flags   *Flags
	addr    string
	latency time.Duration
	fail    string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the mock backend over HTTP",
		UsageText: "tabula serve [--addr :8080] [--latency 200ms] [--fail rate=0.2,code=503]",
		Description: `Starts an HTTP server backed by a freshly seeded in-memory store.

Endpoints:
  GET    /items?page=0&pageSize=10&search=   one page of items
  POST   /items                              add an item
  PATCH  /items/{id}                         update fields of an item
  DELETE /items/{id}                         delete an item
  GET    /healthz                            liveness
  GET    /metrics                            Prometheus metrics

Point another tabula at it with --remote http://localhost:8080.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (defaults to server.addr)",
				Sources:     cli.EnvVars("TABULA_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.DurationFlag{
				Name:        "latency",
				Usage:       "delay added to every operation (defaults to backend.latency)",
				Destination: &cmd.latency,
			},
			&cli.StringFlag{
				Name:        "fail",
				Usage:       "failure injection, e.g. rate=0.2,code=503 (defaults to backend.fail)",
				Destination: &cmd.fail,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.flags.Local == nil {
		return errors.New("serve needs the in-process backend and cannot be combined with --remote")
	}

	cfg := cmd.flags.Config
	addr := cfg.Server.Addr
	if c.IsSet("addr") {
		addr = cmd.addr
	}

	faults := cmd.flags.Local.Faults()
	if c.IsSet("fail") {
		parsed, err := backend.ParseFaults(cmd.fail)
		if err != nil {
			return fmt.Errorf("parse --fail: %w", err)
		}
		parsed.Latency = faults.Latency
		faults = parsed
	}
	if c.IsSet("latency") {
		if cmd.latency < 0 {
			return errors.New("--latency must not be negative")
		}
		faults.Latency = cmd.latency
	}

	store := cmd.flags.Local.Store()
	logger := log.With().Str("component", "api").Logger()
	local := backend.NewLocal(store, log.With().Str("component", "backend").Logger(), backend.WithFaults(faults))

	srv := api.NewServer(local, logger,
		api.WithTransientStatus(faults.StatusCode()),
		api.WithStoreSize(store.Len),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer.Ctx(ctx).Infof("Serving %d items on %s", store.Len(), addr)
	if faults.Enabled() {
		printer.Ctx(ctx).Warnf("Fault injection: latency=%s rate=%.2f code=%d", faults.Latency, faults.Rate, faults.StatusCode())
	}

	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
