package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/dori/sticky/internal/app"
	"github.com/dori/sticky/internal/config"
	"github.com/dori/sticky/internal/model"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	configPath string
	debug      bool
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the terminal UI.
func NewRootCmd(version string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "sticky",
		Short: "sticky - an ordered todo list with sections and pictures",
		Long: `sticky keeps one ordered list of tasks and section dividers.

Tasks can be marked done, in progress or important, reordered, renamed and
given a picture. Run without arguments for the terminal UI.`,
		RunE:          func(cmd *cobra.Command, args []string) error { return runTUI(flags) },
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultPath(), "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Write debug logs to the data directory")

	rootCmd.AddCommand(tuiCmd(flags))
	rootCmd.AddCommand(addCmd(flags))
	rootCmd.AddCommand(dividerCmd(flags))
	rootCmd.AddCommand(listCmd(flags))
	rootCmd.AddCommand(doneCmd(flags))
	rootCmd.AddCommand(progressCmd(flags))
	rootCmd.AddCommand(importantCmd(flags))
	rootCmd.AddCommand(renameCmd(flags))
	rootCmd.AddCommand(rmCmd(flags))
	rootCmd.AddCommand(clearCmd(flags))
	rootCmd.AddCommand(moveCmd(flags))
	rootCmd.AddCommand(imageCmd(flags))
	rootCmd.AddCommand(exportCmd(flags))
	rootCmd.AddCommand(configCmd(flags))
	rootCmd.AddCommand(versionCmd(version))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig reads the config file and applies command line overrides
func (f *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.debug {
		cfg.Log.Debug = true
	}
	return cfg, nil
}

// withApp opens the application for the duration of fn
func (f *globalFlags) withApp(fn func(a *app.App) error) error {
	cfg, err := f.loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(a)
}

// resolveID expands an id prefix to the single entry it identifies
func resolveID(a *app.App, prefix string) (model.Entry, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, fmt.Errorf("empty id")
	}

	var matches []model.Entry
	for _, e := range a.Store.Entries() {
		if e.EntryID() == prefix {
			return e, nil
		}
		if strings.HasPrefix(e.EntryID(), prefix) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no entry matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("id %q is ambiguous (%d entries match)", prefix, len(matches))
	}
}

// resolveTask is resolveID restricted to tasks
func resolveTask(a *app.App, prefix string) (model.Task, error) {
	e, err := resolveID(a, prefix)
	if err != nil {
		return model.Task{}, err
	}
	t, ok := e.(model.Task)
	if !ok {
		return model.Task{}, fmt.Errorf("%q is a section divider, not a task", e.EntryTitle())
	}
	return t, nil
}

// report prints msg when the store changed, "no change" otherwise
func report(cmd *cobra.Command, changed bool, msg string) {
	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "no change")
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sticky v%s\n", version)
		},
	}
}
