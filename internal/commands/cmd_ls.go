package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/printer"
)

type LsCmd struct {
	flags *Flags
	opts  listOptions
}

type listOptions struct {
	page     int
	pageSize int
	search   string
	format   string
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List one page of items",
		UsageText: "tabula ls [--page N] [--page-size N] [--search TEXT]",
		Description: `Fetches a single page through the table coordinator and prints it.

Pages are zero-based. Search matches titles case-insensitively.

Example:
  tabula ls --page 9
  tabula ls --search "Item 5" --format json`,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "page",
				Aliases:     []string{"p"},
				Usage:       "zero-based page index",
				Destination: &cmd.opts.page,
			},
			&cli.IntFlag{
				Name:        "page-size",
				Aliases:     []string{"n"},
				Usage:       "rows per page (defaults to table.page_size)",
				Destination: &cmd.opts.pageSize,
			},
			&cli.StringFlag{
				Name:        "search",
				Aliases:     []string{"s"},
				Usage:       "only list items whose title contains this text",
				Destination: &cmd.opts.search,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.opts.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	opts := cmd.opts
	if !c.IsSet("page-size") {
		opts.pageSize = cmd.flags.Config.Table.PageSize
	}
	return cmd.list(ctx, c.Root().Writer, opts)
}

func (cmd *LsCmd) list(ctx context.Context, out io.Writer, opts listOptions) error {
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q, expected text or json", opts.format)
	}

	q := item.Query{Page: opts.page, PageSize: opts.pageSize, Search: opts.search}
	coord := cmd.flags.Coordinator
	if err := coord.SetQuery(ctx, q); err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	snap := coord.Snapshot()

	if opts.format == "json" {
		page := item.Page{Data: snap.Items, Total: snap.Total}
		if page.Data == nil {
			page.Data = []item.Item{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	p := printer.Ctx(ctx)
	if len(snap.Items) == 0 {
		p.Infof("No items on %s", printer.PageSummary(snap.Query, snap.Total))
		return nil
	}

	if err := printer.WriteItems(out, snap.Items); err != nil {
		return err
	}
	p.Printf("%s", printer.PageSummary(snap.Query, snap.Total))
	return nil
}
