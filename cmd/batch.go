package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"img2pdf/contracts"
	"img2pdf/sources"
)

func newBatchCmd() *cobra.Command {
	var output string
	var jobs int

	cmd := &cobra.Command{
		Use:   "batch <root> -o <outdir>",
		Short: "Write one PDF per image folder under root",
		Long: `batch looks at every direct sub-directory of root that holds images and
writes <outdir>/<folder>.pdf with one page per image, in file name order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args[0], output, jobs)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "documents converted at once (0: one less than the CPU count)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func checkDirs(root, outDir string) error {
	if stat, err := os.Stat(root); err != nil || !stat.IsDir() {
		return fmt.Errorf("input directory %s does not exist or is not a directory", root)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	absRoot, _ := filepath.Abs(root)
	absOut, _ := filepath.Abs(outDir)
	if absRoot == absOut {
		return fmt.Errorf("input and output directories must be different")
	}
	return nil
}

func runBatch(cmd *cobra.Command, root, outDir string, jobs int) error {
	if err := checkDirs(root, outDir); err != nil {
		return err
	}
	folders, err := sources.ImageFolders(root)
	if err != nil {
		return err
	}
	if len(folders) == 0 {
		infof("no image folders found in %s", root)
		return nil
	}
	infof("found %d image folders", len(folders))

	if jobs <= 0 {
		jobs = max(runtime.NumCPU()-1, 1)
	}

	start := time.Now()
	st := newStages(cfg)
	fetcher := newFetcher()

	// decode bars are created up front so the batch renders in folder order
	decodeObs := make([]contracts.Observer, len(folders))
	for i, f := range folders {
		decodeObs[i] = st.decode(f.Name, len(f.ImagePaths))
	}

	errs := make([]error, len(folders))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, f := range folders {
		g.Go(func() error {
			j := job{
				name:   f.Name,
				srcs:   f.ImagePaths,
				output: filepath.Join(outDir, f.Name+".pdf"),
			}
			if err := convert(cmd.Context(), j, st, decodeObs[i], fetcher); err != nil {
				errs[i] = fmt.Errorf("%s: %w", f.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	st.wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			errorf("%v", err)
		}
	}
	logger.Info().
		Int("documents", len(folders)).
		Int("failed", failed).
		Dur("took", time.Since(start)).
		Msg("batch finished")

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(folders))
	}
	successf("converted %d folders into %s", len(folders), outDir)
	return nil
}
