package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"img2pdf/config"
	"img2pdf/contracts"
	"img2pdf/logging"
)

type InputFlags = contracts.InputFlags

var (
	flags InputFlags

	cfg    *config.Config
	logger zerolog.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "img2pdf [sources...] -o out.pdf",
		Short: "Combine images into a PDF, one image per page",
		Long: `img2pdf places every image on its own page, sized so the image fills it
exactly at the chosen resolution (points = pixels * 72 / dpi).

Sources are image files, directories of images or http(s) URLs. The
pages follow the order of the sources.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(flags.ConfigPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.ApplyFlags(flags, cmd.Flags().Changed)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("validate config: %w", err)
			}
			if flags.NoColor {
				color.NoColor = true
			}
			logger = logging.New(logging.LogConfig{
				Level:   cfg.Log.Level,
				Format:  cfg.Log.Format,
				NoColor: color.NoColor,
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args, flags.Output)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.ConfigPath, "config", "c", "", "config file path (default: defaults and IMG2PDF_* env vars)")
	pf.StringVar(&flags.LogLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	pf.StringVar(&flags.LogFormat, "log-format", "console", "log format: console or json")
	pf.BoolVar(&flags.NoColor, "no-color", false, "disable coloured output")

	pf.Float64Var(&flags.DPI, "dpi", 300, "resolution used to size every page")
	pf.StringVar(&flags.Title, "title", "", "document title")
	pf.BoolVar(&flags.DPIFromSource, "dpi-from-source", false, "use the resolution declared by the first image")
	pf.StringVar(&flags.Encoder, "encoder", "native", "PDF encoder: native or fpdf")
	pf.BoolVar(&flags.Parallel, "parallel", true, "decode images concurrently")
	pf.IntVarP(&flags.Workers, "workers", "w", 0, "decode workers (0: one less than the CPU count)")
	pf.StringVar(&flags.Progress, "progress", "bars", "progress display: bars, simple or none")
	pf.IntVar(&flags.FetchRetries, "fetch-retries", 3, "retries for a failed URL download")
	pf.DurationVar(&flags.FetchTimeout, "fetch-timeout", 30*time.Second, "timeout for one URL download")

	root.Flags().StringVarP(&flags.Output, "output", "o", "", "output PDF path")
	_ = root.MarkFlagRequired("output")

	root.AddCommand(newBatchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorf("%v", err)
		os.Exit(1)
	}
}
