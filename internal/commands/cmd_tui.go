package commands

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/tabula/internal/printer"
	"github.com/hay-kot/tabula/internal/tui"
)

type TuiCmd struct {
	flags *Flags
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags) *TuiCmd {
	return &TuiCmd{
		flags: flags,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return nil
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, c *cli.Command) error {
	// Piped output gets the first page as a plain listing
	if !printer.IsTerminal(os.Stdout) {
		return NewLsCmd(cmd.flags).list(ctx, c.Root().Writer, listOptions{
			pageSize: cmd.flags.Config.Table.PageSize,
			format:   "text",
		})
	}

	opts := tui.Options{
		PageSizes: cmd.flags.Config.PageSizeCycle(),
	}

	m := tui.New(cmd.flags.Coordinator, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
