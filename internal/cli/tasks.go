package cli

import (
	"fmt"
	"strings"

	"github.com/dori/sticky/internal/app"
	"github.com/dori/sticky/internal/tasks"
	"github.com/spf13/cobra"
)

func addCmd(flags *globalFlags) *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task to the top of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return flags.withApp(func(a *app.App) error {
				var filename string
				if imagePath != "" {
					var ok bool
					filename, ok = a.Images.SaveFile(imagePath)
					if !ok {
						return fmt.Errorf("failed to import image %s", imagePath)
					}
				}

				id, ok := a.Store.AddTaskWithImage(title, filename)
				if !ok {
					if filename != "" {
						a.Images.Delete(filename)
					}
					return fmt.Errorf("task title must not be empty")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %s\n", shortID(id), strings.TrimSpace(title))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Attach the image at this path")
	return cmd
}

func dividerCmd(flags *globalFlags) *cobra.Command {
	var above string
	var index int

	cmd := &cobra.Command{
		Use:   "divider [title...]",
		Short: "Add a section divider",
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return flags.withApp(func(a *app.App) error {
				at := tasks.Front()
				switch {
				case above != "":
					e, err := resolveID(a, above)
					if err != nil {
						return err
					}
					at = tasks.Above(e.EntryID())
				case cmd.Flags().Changed("index"):
					at = tasks.Index(index)
				}

				id, ok := a.Store.AddDivider(title, at)
				report(cmd, ok, "Created section "+shortID(id))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&above, "above", "", "Insert above this entry id")
	cmd.Flags().IntVar(&index, "index", 0, "Insert at this position")
	cmd.MarkFlagsMutuallyExclusive("above", "index")
	return cmd
}

func doneCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				t, err := resolveTask(a, args[0])
				if err != nil {
					return err
				}
				changed := a.Store.ToggleDone(t.ID)
				state := "done"
				if t.Done {
					state = "not done"
				}
				report(cmd, changed, fmt.Sprintf("%s: %s", state, t.Title))
				return nil
			})
		},
	}
}

func progressCmd(flags *globalFlags) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "progress <id>",
		Short: "Mark a task as in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				t, err := resolveTask(a, args[0])
				if err != nil {
					return err
				}
				changed := a.Store.SetInProgress(t.ID, !off)
				report(cmd, changed, fmt.Sprintf("in progress=%t: %s", !off, t.Title))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Clear the in-progress flag instead")
	return cmd
}

func importantCmd(flags *globalFlags) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "important <id>",
		Short: "Mark a task as important",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				t, err := resolveTask(a, args[0])
				if err != nil {
					return err
				}
				changed := a.Store.SetImportant(t.ID, !off)
				report(cmd, changed, fmt.Sprintf("important=%t: %s", !off, t.Title))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Clear the important flag instead")
	return cmd
}

func renameCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename a task or section",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args[1:], " ")
			return flags.withApp(func(a *app.App) error {
				e, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				changed := a.Store.UpdateTitle(e.EntryID(), title)
				report(cmd, changed, fmt.Sprintf("Renamed %s", shortID(e.EntryID())))
				return nil
			})
		},
	}
}

func rmCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task or section",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				e, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				changed := a.Store.Delete(e.EntryID())
				report(cmd, changed, fmt.Sprintf("Deleted: %s", e.EntryTitle()))
				return nil
			})
		},
	}
}

func clearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every completed task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				n := a.Store.ClearCompleted()
				report(cmd, n > 0, fmt.Sprintf("Cleared %d completed task(s)", n))
				return nil
			})
		},
	}
}

func moveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "move <source> <target>",
		Short: "Move an entry to another entry's position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				src, err := resolveID(a, args[0])
				if err != nil {
					return err
				}
				tgt, err := resolveID(a, args[1])
				if err != nil {
					return err
				}
				changed := a.Store.MoveTask(src.EntryID(), tgt.EntryID())
				report(cmd, changed, fmt.Sprintf("Moved %q to %q", src.EntryTitle(), tgt.EntryTitle()))
				return nil
			})
		},
	}
}

// shortID trims an id for display; resolveID accepts any unique prefix
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
