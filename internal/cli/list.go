package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dori/sticky/internal/app"
	"github.com/dori/sticky/internal/model"
	"github.com/dori/sticky/internal/tasks"
	"github.com/dori/sticky/internal/ui/theme"
	"github.com/spf13/cobra"
)

func listCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				out := cmd.OutOrStdout()
				entries := a.Store.Entries()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No tasks yet. Add one with: sticky add <title>")
					return nil
				}

				fmt.Fprintln(out, renderTable(a, entries))
				fmt.Fprintf(out, "%d left · %d done\n", a.Store.RemainingCount(), a.Store.CompletedCount())

				saved, err := a.DB.UpdatedAt(tasks.StorageKey)
				if err != nil {
					return fmt.Errorf("failed to read save time: %w", err)
				}
				if !saved.IsZero() {
					fmt.Fprintf(out, "Last saved %s\n", saved.Local().Format(time.DateTime))
				}
				return nil
			})
		},
	}
}

func renderTable(a *app.App, entries []model.Entry) string {
	t := theme.Current.Theme
	headerStyle := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	dividerStyle := cellStyle.Foreground(t.Secondary).Bold(true)

	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		row := []string{strconv.Itoa(i), shortID(e.EntryID()), "", "", "", e.EntryTitle()}
		if task, ok := e.(model.Task); ok {
			row[2] = statusMark(task)
			if task.Important {
				row[3] = "!"
			}
			row[4] = imageMark(a, task)
		} else {
			row[5] = "── " + e.EntryTitle() + " ──"
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(t.Border)).
		Headers("#", "ID", "STATUS", "!", "IMAGE", "TITLE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(entries) && entries[row].IsDivider() {
				return dividerStyle
			}
			return cellStyle
		}).
		String()
}

func statusMark(t model.Task) string {
	switch t.Status() {
	case model.StatusDone:
		return "[x]"
	case model.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

// imageMark flags references whose file is gone from the image directory
func imageMark(a *app.App, t model.Task) string {
	if !t.HasImage() {
		return ""
	}
	if !a.Images.Exists(t.ImageFilename) {
		return "missing"
	}
	return "yes"
}
