package main

import (
	"github.com/spf13/cobra"

	"actbatch/internal/app"
	appErrors "actbatch/internal/errors"
	"actbatch/internal/infra/exif"
	"actbatch/internal/infra/fs"
	"actbatch/internal/presentation"
)

var previewFlagKeys = map[string]string{
	"image_search_pattern": "pattern",
	"exact_match":          "exact",
}

func newPreviewCmd(root *rootOptions) *cobra.Command {
	var proceed bool
	cmd := &cobra.Command{
		Use:   "preview <root>",
		Short: "List every matching image under root without generating anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, root, previewFlagKeys)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
			}
			dir, err := resolveRoot(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			logger, err := openLogger(out, cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			scanner := app.Scanner{FS: fs.OSFS{}, Exif: exif.Reader{}, Logger: logger}
			entries, err := scanner.Preview(cmd.Context(), dir, cfg.SearchPattern, cfg.ExactMatch)
			if err != nil {
				return planError(dir, err)
			}
			presentation.Printer{Writer: out, Verbose: cfg.Verbose}.PrintPreview(dir, entries)

			if len(entries) == 0 {
				return nil
			}
			if !proceed {
				if !isTerminal(cmd.InOrStdin()) {
					return nil
				}
				ok, err := confirm(cmd.InOrStdin(), out, "Proceed with generation?")
				if err != nil || !ok {
					return nil
				}
			}
			logger.Close()
			return runBatch(cmd, dir, cfg, runOptions{plain: true, yes: true})
		},
	}
	addMatchFlags(cmd)
	cmd.Flags().BoolVar(&proceed, "run", false, "start generating right after the preview")
	return cmd
}
