package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Yuheng-Li/citation/cover"
	"github.com/Yuheng-Li/citation/dataset"
	"github.com/Yuheng-Li/citation/db"
	"github.com/Yuheng-Li/citation/domain"
	"github.com/Yuheng-Li/citation/metrics"
	"github.com/Yuheng-Li/citation/namematch"
	"github.com/Yuheng-Li/citation/report"
)

var (
	MinimalSetFile    = "minimal_paper_set.json"
	MinimalReportFile = "minimal_paper_set_report.txt"
	XLSXFile          string
	Strategy          = cover.Scan.String()
	PruneInterval     = cover.DefaultPruneInterval
	ResolveNames      bool
	ResumeRun         string
	MetricsAddr       string

	// ProgressLogEvery is how many picks pass between info level progress
	// lines.  Every pick is logged at debug level.
	ProgressLogEvery = 50
)

func newMinPapersCmd() *cobra.Command {
	minPapersCmd := &cobra.Command{
		Use:     "min-papers",
		Aliases: []string{"mp"},
		Short:   "Select a minimal paper set",
		Long:    "Greedily select the fewest papers whose bylines cover every active author",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := signalContext()
			defer cancel()

			p, err := startProfiler(ProfileMode)
			if err != nil {
				log.Fatalf("main: %s", err)
			}
			defer p.Stop()

			if err := minPapers(ctx); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}

	minPapersCmd.Flags().StringVarP(&ActiveAuthorsFile, "active-authors", "a", ActiveAuthorsFile, "Active authors JSON file")
	minPapersCmd.Flags().StringVarP(&PapersDir, "input", "i", PapersDir, "Conference papers directory")
	minPapersCmd.Flags().StringVarP(&MinimalSetFile, "output", "o", MinimalSetFile, "Selected papers JSON output file")
	minPapersCmd.Flags().StringVarP(&MinimalReportFile, "report", "r", MinimalReportFile, "Text report output file")
	minPapersCmd.Flags().StringVarP(&XLSXFile, "xlsx", "", XLSXFile, "Optional XLSX workbook output file")
	minPapersCmd.Flags().StringVarP(&Strategy, "strategy", "s", Strategy, "Selection strategy: scan or lazy")
	minPapersCmd.Flags().IntVarP(&PruneInterval, "prune-interval", "", PruneInterval, "Rounds between dropping exhausted candidates (scan strategy, <=0 prunes every round)")
	minPapersCmd.Flags().BoolVarP(&ResolveNames, "resolve-names", "n", ResolveNames, "Map byline name variants (e.g. \"K. He\") onto active author names")
	minPapersCmd.Flags().StringVarP(&ResumeRun, "resume", "", ResumeRun, "Checkpoint run name; picks are persisted to the DB and an interrupted run continues where it stopped")
	minPapersCmd.Flags().StringVarP(&MetricsAddr, "metrics-addr", "", MetricsAddr, "Expose Prometheus metrics on this address while selecting")
	minPapersCmd.Flags().StringVarP(&ProfileMode, "profile", "", ProfileMode, "Profile the selection: cpu, mem or block")
	minPapersCmd.Flags().StringVarP(&ProfilePath, "profile-path", "", ProfilePath, "Directory profiles are written to")

	return minPapersCmd
}

// minPapers runs the whole selection pipeline.  Missing inputs are logged and
// end the run without an error.
func minPapers(ctx context.Context) error {
	start := time.Now()

	strategy, err := cover.ParseStrategy(Strategy)
	if err != nil {
		return err
	}

	authors, err := dataset.LoadActiveAuthors(ActiveAuthorsFile)
	if errors.Is(err, dataset.ErrInputMissing) {
		log.WithField("file", ActiveAuthorsFile).Errorf("Active authors not available: %s", err)
		log.Error("Run `citation active-authors` first or point -a/--active-authors at an existing file")
		return nil
	}
	if err != nil {
		return err
	}
	universe := dataset.Universe(authors)
	if universe.Len() == 0 {
		log.WithField("file", ActiveAuthorsFile).Error("Active authors file lists no authors, nothing to cover")
		return nil
	}

	papers, err := loadPapers(ctx)
	if papers == nil {
		return err
	}

	var resolver dataset.NameResolver
	if ResolveNames {
		resolver = namematch.NewResolver(universe.Slice())
	}
	candidates := dataset.Relevant(universe, papers, resolver)
	items := dataset.Items(candidates)
	log.WithField("papers", len(papers)).
		WithField("targets", universe.Len()).
		WithField("relevant", len(candidates)).
		WithField("strategy", strategy).
		Info("Selecting minimal paper set")

	observers := cover.MultiObserver{newProgressLogger()}
	if MetricsAddr != "" {
		collector := metrics.New()
		observers = append(observers, collector.Observer())

		metricsCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := collector.Serve(metricsCtx, MetricsAddr); err != nil {
				log.WithField("addr", MetricsAddr).Errorf("Metrics server failed: %s", err)
			}
		}()
	}

	opts := []cover.Option{
		cover.WithStrategy(strategy),
		cover.WithPruneInterval(PruneInterval),
	}

	var result *cover.Result
	if ResumeRun == "" {
		result = cover.New(append(opts, cover.WithObserver(observers))...).Select(universe, items)
	} else {
		if result, err = selectWithCheckpoints(universe, items, opts, observers); err != nil {
			return err
		}
	}

	selected := make([]*domain.Paper, 0, len(result.Selection))
	for _, item := range result.Items() {
		selected = append(selected, item.(*dataset.Candidate).Paper)
	}

	covered := report.Verify(universe, selected, resolver)
	summary := report.Summary{
		TotalPapers: len(papers),
		Targets:     universe.Len(),
		Selected:    len(selected),
		Covered:     covered.Len(),
		Elapsed:     time.Since(start),
	}
	if expected := universe.Len() - result.Uncovered.Len(); covered.Len() != expected {
		log.WithField("verified", covered.Len()).WithField("expected", expected).Warn("Verified coverage disagrees with selection bookkeeping")
	}
	if n := result.Uncovered.Len(); n > 0 {
		log.WithField("uncovered", n).Warn("Some active authors appear in no relevant paper and remain uncovered")
		for _, name := range result.Uncovered.Slice() {
			log.WithField("author", name).Debug("Uncovered")
		}
	}

	if err := dataset.WritePapers(MinimalSetFile, selected); err != nil {
		return fmt.Errorf("writing %v: %s", MinimalSetFile, err)
	}
	if err := writeTextFile(MinimalReportFile, func(f *os.File) error {
		return report.WriteText(f, summary, selected)
	}); err != nil {
		return err
	}
	if XLSXFile != "" {
		if err := report.WriteXLSX(XLSXFile, summary, selected); err != nil {
			return err
		}
	}
	if !Quiet {
		report.RenderTable(os.Stdout, summary)
	}

	log.WithField("output", MinimalSetFile).WithField("report", MinimalReportFile).Info("Saved minimal paper set")
	return nil
}

// selectWithCheckpoints persists every pick under ResumeRun and, when the run
// already has picks stored for the same inputs, continues from them.
func selectWithCheckpoints(universe cover.Set, items []cover.Item, opts []cover.Option, observers cover.MultiObserver) (*cover.Result, error) {
	cfg, err := dbConfig()
	if err != nil {
		return nil, err
	}

	var result *cover.Result
	if err := db.WithClient(cfg, func(dbClient db.Client) error {
		fp := db.NewFingerprint(universe, items)

		run, prior, err := dbClient.Resume(ResumeRun, fp)
		if errors.Is(err, db.ErrKeyNotFound) {
			run = domain.NewRun(ResumeRun, fp)
			run.Strategy = Strategy
			run.PruneInterval = PruneInterval
			if err = dbClient.RunSave(run); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		logger := log.WithField("run", ResumeRun)
		if len(prior) > 0 {
			logger.WithField("picks", len(prior)).Info("Resuming from checkpoint")
		}

		cp := db.NewCheckpointer(dbClient, ResumeRun, func(item cover.Item) string {
			return item.(*dataset.Candidate).Paper.Title
		})
		sel := cover.New(append(opts, cover.WithObserver(append(observers, cp)))...)
		if result, err = sel.Continue(universe, items, prior); err != nil {
			return fmt.Errorf("continuing run %q: %s", ResumeRun, err)
		}
		if err := cp.Err(); err != nil {
			return fmt.Errorf("checkpointing run %q: %s", ResumeRun, err)
		}

		// Reload to pick up the counters PickAppend maintained.
		if run, err = dbClient.Run(ResumeRun); err != nil {
			return err
		}
		run.Complete = true
		if err := dbClient.RunSave(run); err != nil {
			return err
		}
		logger.WithField("picks", run.Picks).Info("Checkpoint run complete")
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// newProgressLogger reports selection progress through logrus, and the
// advisory coverage threshold once when it is first reached.
func newProgressLogger() cover.Observer {
	announced := false
	return cover.ObserverFunc(func(p cover.Progress) {
		fields := log.Fields{
			"iteration":  p.Iteration,
			"gain":       p.Pick.Gain,
			"covered":    p.Covered,
			"total":      p.Total,
			"candidates": p.Candidates,
		}
		if ProgressLogEvery > 0 && p.Iteration%ProgressLogEvery == 0 {
			log.WithFields(fields).Infof("Coverage %.1f%%", p.Percent())
		} else {
			log.WithFields(fields).Debugf("Coverage %.1f%%", p.Percent())
		}
		if p.PastThreshold && !announced {
			announced = true
			log.WithField("iteration", p.Iteration).Infof("Coverage reached %.2f%%, the remaining picks only add stragglers", p.Percent())
		}
	})
}
