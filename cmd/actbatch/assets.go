package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appErrors "actbatch/internal/errors"
	"actbatch/internal/infra/probe"
	"actbatch/internal/presentation"
)

func newAssetsCmd(root *rootOptions) *cobra.Command {
	var selectIndex int
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List driver videos and pick the one passed to the generator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := loadConfig(cmd, root, map[string]string{"assets_dir": "dir"})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			logger, err := openLogger(out, cfg)
			if err != nil {
				return err
			}
			defer logger.Close()

			lister := probe.Lister{Logger: logger}
			assets, err := lister.List(cmd.Context(), cfg.AssetsDir)
			if err != nil {
				return appErrors.Wrap(appErrors.NotFound, "assets", cfg.AssetsDir, err)
			}

			selected := cfg.DriverAsset
			if cmd.Flags().Changed("select") {
				if selectIndex < 1 || selectIndex > len(assets) {
					return appErrors.Wrap(appErrors.InvalidConfig, "select", "", fmt.Errorf("choose a number between 1 and %d", len(assets)))
				}
				selected = assets[selectIndex-1].Path
				if err := store.Set("driver_video", selected); err != nil {
					return appErrors.Wrap(appErrors.IOFailure, "save config", store.Path(), err)
				}
			}

			presentation.Printer{Writer: out, Verbose: cfg.Verbose}.PrintAssets(cfg.AssetsDir, assets, selected)
			if cmd.Flags().Changed("select") {
				fmt.Fprintf(out, "Driver video set to %s\n", selected)
			}
			return nil
		},
	}
	cmd.Flags().String("dir", "", "directory holding driver videos")
	cmd.Flags().IntVar(&selectIndex, "select", 0, "store the Nth listed video as the driver video")
	return cmd
}
