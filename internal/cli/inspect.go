package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command, an interactive floor browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		backends backendFlags
		plain    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [layout.json | layout-id]",
		Short: "Browse a layout floor by floor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], backends, plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "print", false, "print every floor as text instead of opening the browser")
	backends.bindStore(cmd, "store to load layout IDs from")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, backends backendFlags, plain bool) error {
	backends.noCache = true
	runner, err := c.newRunner(ctx, backends, cliScope, isLayoutID(input))
	if err != nil {
		return err
	}
	defer runner.Close()

	l, err := loadLayout(ctx, runner, input)
	if err != nil {
		return err
	}

	if plain {
		for _, z := range l.Floors() {
			fmt.Println(StyleTitle.Render(fmt.Sprintf("floor %d", z)))
			fmt.Println(newFloorGrid(l, z).String())
			printNewline()
		}
		return nil
	}

	_, err = tea.NewProgram(NewInspectModel(l), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
