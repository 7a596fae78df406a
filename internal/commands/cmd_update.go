package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/hay-kot/tabula/internal/printer"
)

type UpdateCmd struct {
	flags  *Flags
	title  string
	agreed bool
	typ    string
}

// NewUpdateCmd creates a new update command
func NewUpdateCmd(flags *Flags) *UpdateCmd {
	return &UpdateCmd{flags: flags}
}

// Register adds the update command to the application
func (cmd *UpdateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "update",
		Usage:     "Update fields of an item",
		UsageText: "tabula update <id> [--title TEXT] [--agreed=true|false] [--type A|B|C]",
		Description: `Merges the given fields into an existing item. Fields whose flags are
not passed keep their current value.

Example:
  tabula update 6f1c... --title "Renamed"
  tabula update 6f1c... --agreed=false --type C`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "new title",
				Destination: &cmd.title,
			},
			&cli.BoolFlag{
				Name:        "agreed",
				Usage:       "new agreed flag",
				Destination: &cmd.agreed,
			},
			&cli.StringFlag{
				Name:        "type",
				Usage:       "new type (A, B or C)",
				Destination: &cmd.typ,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UpdateCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("item id required\n\nUsage: tabula update <id> [--title TEXT]")
	}

	var patch item.Patch
	if c.IsSet("title") {
		patch = patch.SetTitle(cmd.title)
	}
	if c.IsSet("agreed") {
		patch = patch.SetAgreed(cmd.agreed)
	}
	if c.IsSet("type") {
		typ, err := item.ParseType(cmd.typ)
		if err != nil {
			return err
		}
		patch = patch.SetType(typ)
	}
	if patch.IsEmpty() {
		return errors.New("nothing to update: pass at least one of --title, --agreed or --type")
	}

	updated, err := cmd.flags.Coordinator.UpdateItem(ctx, id, patch)
	if err != nil {
		return err
	}

	if err := printer.WriteItem(c.Root().Writer, updated); err != nil {
		return fmt.Errorf("print item: %w", err)
	}
	p.Successf("Updated %q", updated.Title)
	return nil
}
