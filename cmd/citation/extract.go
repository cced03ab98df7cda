package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Yuheng-Li/citation/dataset"
	"github.com/Yuheng-Li/citation/proceedings"
)

var (
	ExtractConferences = []string{"CVPR"}
	ExtractYears       = []int{2025, 2024, 2023}
	ExtractForce       bool
	ExtractDelay       = 3 * time.Second
)

func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:     "extract",
		Aliases: []string{"ex"},
		Short:   "Proceedings extraction",
		Long:    "Extract conference proceedings listings into per-venue paper files",
	}

	extractCmd.AddCommand(
		newExtractCVFCmd(),
	)

	return extractCmd
}

func newExtractCVFCmd() *cobra.Command {
	extractCVFCmd := &cobra.Command{
		Use:   "cvf",
		Short: "Extract CVF Open Access listings",
		Long:  "Extract CVF Open Access (openaccess.thecvf.com) listings, one file per conference and year",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			if err := extractCVF(ctx, proceedings.NewFetcher()); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	extractCVFCmd.Flags().StringSliceVarP(&ExtractConferences, "conference", "c", ExtractConferences, "Conference name(s), e.g. CVPR, ICCV, WACV")
	extractCVFCmd.Flags().IntSliceVarP(&ExtractYears, "year", "y", ExtractYears, "Year(s) to extract")
	extractCVFCmd.Flags().StringVarP(&PapersDir, "output", "o", PapersDir, "Output directory")
	extractCVFCmd.Flags().BoolVarP(&ExtractForce, "force", "f", ExtractForce, "Re-extract venues whose output file already exists")
	extractCVFCmd.Flags().DurationVarP(&ExtractDelay, "delay", "d", ExtractDelay, "Pause between requests")
	extractCVFCmd.Flags().StringVarP(&proceedings.BaseURL, "base-url", "", proceedings.BaseURL, "CVF Open Access base URL")

	return extractCVFCmd
}

func venueFile(conference string, year int) string {
	return filepath.Join(PapersDir, fmt.Sprintf("%v_%v_papers.json", strings.ToLower(conference), year))
}

// extractCVF extracts every requested venue.  A venue whose output file
// already exists is skipped, so an interrupted extraction picks up where it
// left off.  Venues that fail or list no papers are logged and skipped.
func extractCVF(ctx context.Context, fetcher *proceedings.Fetcher) error {
	first := true
	for _, conference := range ExtractConferences {
		for _, year := range ExtractYears {
			var (
				out    = venueFile(conference, year)
				logger = log.WithField("conference", conference).WithField("year", year)
			)
			if _, err := os.Stat(out); err == nil && !ExtractForce {
				logger.WithField("file", out).Info("Output already exists, skipping")
				continue
			}

			if !first && ExtractDelay > 0 {
				select {
				case <-time.After(ExtractDelay):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			first = false

			papers, err := fetcher.CVF(ctx, conference, year)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				logger.Errorf("Extraction failed: %s", err)
				continue
			}
			if len(papers) == 0 {
				logger.Warn("No papers found")
				continue
			}
			if err := dataset.WritePapers(out, papers); err != nil {
				return fmt.Errorf("writing %v: %s", out, err)
			}
			logger.WithField("file", out).WithField("papers", len(papers)).Info("Saved venue")
		}
	}
	return nil
}
