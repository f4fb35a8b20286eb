package cli

import (
	"encoding/json"
	"fmt"

	"github.com/dori/sticky/internal/app"
	"github.com/dori/sticky/internal/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func exportCmd(flags *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole list to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withApp(func(a *app.App) error {
				records := model.Records(a.Store.Entries())

				var data []byte
				var err error
				switch format {
				case "json":
					data, err = json.MarshalIndent(records, "", "  ")
					data = append(data, '\n')
				case "yaml":
					data, err = yaml.Marshal(records)
				default:
					return fmt.Errorf("unknown format %q (want json or yaml)", format)
				}
				if err != nil {
					return fmt.Errorf("failed to encode %s: %w", format, err)
				}

				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json, yaml)")
	return cmd
}
