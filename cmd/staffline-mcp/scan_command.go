package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/staffline-mcp/internal/imaging"
	"github.com/ironsheep/staffline-mcp/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		format     string
		workers    int
		overlayDir string
		channel    string
		blurRadius float64
		invert     bool
	)

	cmd := &cobra.Command{
		Use:   "scan IMAGE...",
		Short: "Detect staves in image files",
		Long: `Detect staves in one or more image files and print a report.

Images are analyzed in parallel. A failing image is reported and does not
stop the others, but the command exits non-zero if any image failed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			opts := scan.Options{
				Grid:       cfg.GridOptions(),
				Workers:    cfg.ScanWorkers(),
				OverlayDir: overlayDir,
				Overlay:    cfg.OverlayOptions(),
			}
			flags := cmd.Flags()
			if flags.Changed("workers") {
				opts.Workers = workers
			}
			if flags.Changed("channel") {
				ch, err := imaging.ParseChannel(channel)
				if err != nil {
					return err
				}
				opts.Grid.Channel = ch
			}
			if flags.Changed("blur") {
				opts.Grid.BlurRadius = blurRadius
			}
			if flags.Changed("invert") {
				opts.Grid.Invert = invert
			}
			if !flags.Changed("format") {
				format = cfg.Scan.Format
			}

			reports, err := scan.New(opts, logger).Scan(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := scan.Write(cmd.OutOrStdout(), format, reports); err != nil {
				return err
			}

			failed := 0
			for _, r := range reports {
				if r.Failed() {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images failed", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or yaml")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Images analyzed in parallel (default from config)")
	cmd.Flags().StringVar(&overlayDir, "overlay-dir", "", "Write an overlay PNG per image to this directory")
	cmd.Flags().StringVar(&channel, "channel", "", "Intensity channel: luma or lightness")
	cmd.Flags().Float64Var(&blurRadius, "blur", 0, "Gaussian blur radius before sampling")
	cmd.Flags().BoolVar(&invert, "invert", false, "Treat light lines on a dark background")
	return cmd
}
