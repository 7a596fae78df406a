package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/printer"
)

type RmCmd struct {
	flags *Flags
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags) *RmCmd {
	return &RmCmd{flags: flags}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete items",
		UsageText: "tabula rm <id...>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	ids := c.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("item id required\n\nUsage: tabula rm <id...>")
	}

	for _, id := range ids {
		deleted, err := cmd.flags.Coordinator.DeleteItem(ctx, id)
		if err != nil {
			return err
		}
		p.Successf("Deleted %q", deleted.Title)
	}
	return nil
}
