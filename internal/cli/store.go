package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/roomweaver/pkg/collectable"
	pio "github.com/matzehuels/roomweaver/pkg/io"
	"github.com/matzehuels/roomweaver/pkg/pipeline"
	"github.com/matzehuels/roomweaver/pkg/store"
)

// storeCommand creates the store command for managing saved layouts.
func (c *CLI) storeCommand() *cobra.Command {
	var backends backendFlags

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved layouts",
	}
	cmd.PersistentFlags().StringVar(&backends.store, "store", "", "layout store (dir, file://, sqlite:// or mongodb:// URL)")

	open := func(cmd *cobra.Command) (*pipeline.Runner, error) {
		b := backends
		b.noCache = true
		return c.newRunner(cmd.Context(), b, cliScope, true)
	}

	cmd.AddCommand(c.storeListCommand(open))
	cmd.AddCommand(c.storeShowCommand(open))
	cmd.AddCommand(c.storeDeleteCommand(open))
	cmd.AddCommand(c.storeImportCommand(open))
	cmd.AddCommand(c.storeExportCommand(open))

	return cmd
}

type runnerOpener func(*cobra.Command) (*pipeline.Runner, error)

func (c *CLI) storeListCommand(open runnerOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved layouts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := open(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			list, err := runner.Store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No saved layouts")
				return nil
			}
			fmt.Println(summaryTable(list))
			return nil
		},
	}
}

func summaryTable(list []store.Summary) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{
			s.ID,
			s.Name,
			strconv.FormatInt(s.Seed, 10),
			strconv.Itoa(s.Rooms),
			strconv.Itoa(len(s.Floors)),
			s.CreatedAt.Local().Format(time.DateTime),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Seed", "Rooms", "Floors", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == -1:
				return base.Foreground(colorGray).Bold(true)
			case col == 0:
				return base.Foreground(colorDim)
			case col == 1:
				return base.Foreground(colorCyan)
			}
			return base
		}).
		Render()
}

func (c *CLI) storeShowCommand(open runnerOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a saved layout's rooms and collectables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := open(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			l, err := loadLayout(cmd.Context(), runner, args[0])
			if err != nil {
				return err
			}
			s := store.Summarize(l)
			printKeyValue("ID", s.ID)
			printKeyValue("Name", s.Name)
			printKeyValue("Seed", strconv.FormatInt(s.Seed, 10))
			printKeyValue("Rooms", strconv.Itoa(s.Rooms))
			printKeyValue("Connections", strconv.Itoa(s.Connections))
			printKeyValue("Floors", joinInts(s.Floors))
			if items := collectable.Assignments(l); len(items) > 0 {
				printNewline()
				for _, a := range items {
					printDetail("%s #%d in %s slot %d", a.Group, a.ID, a.Room, a.Slot)
				}
			}
			return nil
		},
	}
}

func (c *CLI) storeDeleteCommand(open runnerOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete saved layouts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := open(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			for _, id := range args {
				if err := runner.Delete(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess("Deleted %s", id)
			}
			return nil
		},
	}
}

func (c *CLI) storeImportCommand(open runnerOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "import [layout.json...]",
		Short: "Save exported layouts into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := open(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			for _, path := range args {
				l, err := pio.ImportLayout(path)
				if err != nil {
					return err
				}
				if err := runner.Save(cmd.Context(), l); err != nil {
					return err
				}
				printSuccess("Imported %s as %s", path, StyleHighlight.Render(l.ID))
			}
			return nil
		},
	}
}

func (c *CLI) storeExportCommand(open runnerOpener) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a saved layout as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := open(cmd)
			if err != nil {
				return err
			}
			defer runner.Close()

			l, err := loadLayout(cmd.Context(), runner, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = l.ID + ".json"
			}
			if err := pio.ExportLayout(l, output); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <id>.json)")
	return cmd
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
