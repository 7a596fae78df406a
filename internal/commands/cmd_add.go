package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/printer"
)

type AddCmd struct {
	flags  *Flags
	title  string
	agreed bool
	typ    string
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags) *AddCmd {
	return &AddCmd{flags: flags}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add an item",
		UsageText: "tabula add --title TEXT [--agreed] [--type A|B|C]",
		Description: `Adds an item through the table coordinator and prints it.

The title may also be given as positional arguments.

Example:
  tabula add --title "Quarterly report" --type B --agreed
  tabula add Quarterly report`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "item title",
				Destination: &cmd.title,
			},
			&cli.BoolFlag{
				Name:        "agreed",
				Usage:       "mark the item as agreed",
				Destination: &cmd.agreed,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "item type (A, B or C)",
				Value:       "A",
				Destination: &cmd.typ,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	title := cmd.title
	if title == "" {
		title = strings.Join(c.Args().Slice(), " ")
	}

	typ, err := item.ParseType(cmd.typ)
	if err != nil {
		return err
	}

	added, err := cmd.flags.Coordinator.AddItem(ctx, item.Item{
		Title:  title,
		Agreed: cmd.agreed,
		Type:   typ,
	})
	if err != nil {
		return err
	}

	if err := printer.WriteItem(c.Root().Writer, added); err != nil {
		return fmt.Errorf("print item: %w", err)
	}
	p.Successf("Added %q", added.Title)
	return nil
}
