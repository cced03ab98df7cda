package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Yuheng-Li/citation/activity"
	"github.com/Yuheng-Li/citation/dataset"
	"github.com/Yuheng-Li/citation/domain"
	"github.com/Yuheng-Li/citation/namematch"
	"github.com/Yuheng-Li/citation/report"
)

var (
	ActiveAuthorsReportFile = "active_authors_report.txt"
	AuthorStatisticsFile    = "author_statistics.txt"

	Criteria = activity.NewCriteria()
)

func newActiveAuthorsCmd() *cobra.Command {
	activeAuthorsCmd := &cobra.Command{
		Use:     "active-authors",
		Aliases: []string{"aa"},
		Short:   "Find active authors",
		Long:    "Classify every author by byline position and store the active ones",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			if err := activeAuthors(ctx); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	activeAuthorsCmd.Flags().StringVarP(&PapersDir, "input", "i", PapersDir, "Conference papers directory")
	activeAuthorsCmd.Flags().StringVarP(&ActiveAuthorsFile, "output", "o", ActiveAuthorsFile, "Active authors JSON output file")
	activeAuthorsCmd.Flags().StringVarP(&ActiveAuthorsReportFile, "report", "r", ActiveAuthorsReportFile, "Text report output file")
	activeAuthorsCmd.Flags().StringSliceVarP(&Criteria.Conferences, "conference", "c", nil, "Only count papers from files starting with these prefixes, e.g. cvpr")
	activeAuthorsCmd.Flags().IntVarP(&Criteria.MinFirstOrLast, "min-first-or-last", "", Criteria.MinFirstOrLast, "Minimum first or last author papers")
	activeAuthorsCmd.Flags().IntVarP(&Criteria.MinMiddle, "min-middle", "", Criteria.MinMiddle, "Minimum middle author papers")

	return activeAuthorsCmd
}

func activeAuthors(ctx context.Context) error {
	papers, err := loadPapers(ctx)
	if papers == nil {
		return err
	}

	analysis := activity.Analyze(papers, Criteria)
	log.WithField("papers", analysis.TotalPapers).
		WithField("unique-authors", analysis.UniqueAuthors()).
		WithField("active-authors", len(analysis.Active)).
		Info("Classified authors")

	if err := dataset.WriteActiveAuthors(ActiveAuthorsFile, analysis.Active); err != nil {
		return fmt.Errorf("writing %v: %s", ActiveAuthorsFile, err)
	}
	if err := writeTextFile(ActiveAuthorsReportFile, func(f *os.File) error {
		return report.WriteActiveAuthorsText(f, analysis)
	}); err != nil {
		return err
	}
	log.WithField("file", ActiveAuthorsFile).WithField("report", ActiveAuthorsReportFile).Info("Saved active authors")
	return nil
}

func newAuthorStatsCmd() *cobra.Command {
	authorStatsCmd := &cobra.Command{
		Use:     "author-stats",
		Aliases: []string{"stats"},
		Short:   "Author frequency statistics",
		Long:    "Count how many bylines every author appears in",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			papers, err := loadPapers(ctx)
			if papers == nil {
				if err != nil {
					log.Fatalf("main: %s", err)
				}
				return
			}
			stats := activity.Statistics(papers)
			if err := writeTextFile(AuthorStatisticsFile, func(f *os.File) error {
				return report.WriteStatisticsText(f, stats)
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
			log.WithField("unique-authors", stats.UniqueAuthors()).WithField("file", AuthorStatisticsFile).Info("Saved author statistics")
		},
	}

	authorStatsCmd.Flags().StringVarP(&PapersDir, "input", "i", PapersDir, "Conference papers directory")
	authorStatsCmd.Flags().StringVarP(&AuthorStatisticsFile, "output", "o", AuthorStatisticsFile, "Statistics output file")

	return authorStatsCmd
}

func newMatchNamesCmd() *cobra.Command {
	matchNamesCmd := &cobra.Command{
		Use:   "match-names NAME1 NAME2",
		Short: "Author name matching",
		Long:  "Report whether two author name strings plausibly denote the same person",
		Args:  cobra.ExactArgs(2),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			result := map[string]interface{}{
				"name1":  args[0],
				"name2":  args[1],
				"parts1": namematch.Parts(args[0]),
				"parts2": namematch.Parts(args[1]),
				"match":  namematch.Match(args[0], args[1]),
			}
			if err := emitJSON(result); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return matchNamesCmd
}

// loadPapers reads PapersDir.  When the directory is missing or empty the
// problem is logged and (nil, nil) returned so callers end without an error
// exit.
func loadPapers(ctx context.Context) ([]*domain.Paper, error) {
	papers, err := dataset.LoadConferencePapers(ctx, PapersDir)
	if errors.Is(err, dataset.ErrInputMissing) {
		log.WithField("dir", PapersDir).Errorf("No conference papers available: %s", err)
		log.Error("Run `citation extract cvf` first or point -i/--input at a directory of *.json paper files")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return papers, nil
}

func writeTextFile(path string, fn func(f *os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	if err = fn(f); err != nil {
		return fmt.Errorf("writing %v: %s", path, err)
	}
	return nil
}
