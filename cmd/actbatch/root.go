package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"actbatch/internal/config"
	appErrors "actbatch/internal/errors"
	"actbatch/internal/logging"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "actbatch",
		Short: "Turn folders of images into videos, one generation at a time",
		Long: `actbatch scans the subfolders of a directory for images whose names match a
pattern and sends each one to a video generator, strictly one after another
with a fixed pause in between.

Examples:
  actbatch preview ~/Pictures/characters
  actbatch run ~/Pictures/characters --pattern genx --delay 2
  actbatch config set output_location co-located`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/actbatch/config.json)")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	root.AddCommand(
		newRunCmd(opts),
		newPreviewCmd(opts),
		newAssetsCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// loadConfig builds the store for this invocation, binds the command's
// flags and returns the merged snapshot.
func loadConfig(cmd *cobra.Command, opts *rootOptions, bindings map[string]string) (*config.Store, config.Config, error) {
	store := config.NewStore(opts.configPath)

	all := map[string]string{"verbose_logging": "verbose"}
	for key, flag := range bindings {
		all[key] = flag
	}
	for key, name := range all {
		if err := store.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, config.Config{}, appErrors.Wrap(appErrors.Internal, "bind flag", name, err)
		}
	}

	cfg, err := store.Load()
	if err != nil {
		return nil, config.Config{}, appErrors.Wrap(appErrors.InvalidConfig, "load config", store.Path(), err)
	}
	return store, cfg, nil
}

func openLogger(out io.Writer, cfg config.Config) (logging.Logger, error) {
	logger, err := logging.Open(out, cfg.Verbose, cfg.LogFile)
	if err != nil {
		return logging.Logger{}, appErrors.Wrap(appErrors.IOFailure, "open log", cfg.LogFile, err)
	}
	return logger, nil
}

// resolveRoot checks that the argument names a readable directory.
func resolveRoot(arg string) (string, error) {
	root := config.NormalizeDirArg(arg)
	info, err := os.Stat(root)
	if err != nil {
		return "", appErrors.Wrap(appErrors.NotFound, "stat", root, err)
	}
	if !info.IsDir() {
		return "", appErrors.Wrap(appErrors.InvalidConfig, "root", root, fmt.Errorf("%s is not a directory", root))
	}
	return root, nil
}

func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	reader := bufio.NewReader(in)
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}
