package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"actbatch/internal/config"
	appErrors "actbatch/internal/errors"
	"actbatch/internal/presentation"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persisted settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := loadConfig(cmd, root, nil)
			if err != nil {
				return err
			}
			presentation.Printer{Writer: cmd.OutOrStdout()}.PrintSettings(cfg, store.Path())
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "\nWarning: %v\n", err)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a single setting",
		Long:  "Persist a single setting. Known keys: " + strings.Join(config.Keys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewStore(root.configPath)
			if err := store.Set(args[0], args[1]); err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config set", store.Path(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated in %s\n", args[0], store.Path())
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.NewStore(root.configPath).Path())
			return nil
		},
	}

	cmd.AddCommand(show, set, path)
	return cmd
}
