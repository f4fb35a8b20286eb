package cli

import (
	"fmt"

	"github.com/dori/sticky/internal/app"
	"github.com/spf13/cobra"
)

func imageCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage task pictures",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "attach <id> <path>",
		Short: "Import a picture and attach it to a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				t, err := resolveTask(a, args[0])
				if err != nil {
					return err
				}

				filename, ok := a.Images.SaveFile(args[1])
				if !ok {
					return fmt.Errorf("failed to import image %s", args[1])
				}
				changed := a.Store.UpdateImage(t.ID, filename)
				report(cmd, changed, fmt.Sprintf("Attached %s to %q", filename, t.Title))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear <id>",
		Short: "Detach the picture from a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				t, err := resolveTask(a, args[0])
				if err != nil {
					return err
				}
				changed := a.Store.UpdateImage(t.ID, "")
				report(cmd, changed, fmt.Sprintf("Detached picture from %q", t.Title))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path <id>",
		Short: "Print the file path of a task's picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				t, err := resolveTask(a, args[0])
				if err != nil {
					return err
				}
				if !t.HasImage() {
					return fmt.Errorf("%q has no picture", t.Title)
				}
				fmt.Fprintln(cmd.OutOrStdout(), a.Images.Path(t.ImageFilename))
				return nil
			})
		},
	})

	return cmd
}
