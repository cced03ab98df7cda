package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Yuheng-Li/citation/db"
	"github.com/Yuheng-Li/citation/domain"
)

func newCheckpointsCmd() *cobra.Command {
	checkpointsCmd := &cobra.Command{
		Use:     "checkpoints",
		Aliases: []string{"checkpoint", "cp"},
		Short:   "Selection checkpoints",
		Long:    "Inspect and remove min-papers checkpoint runs stored in the DB",
	}

	checkpointsCmd.AddCommand(
		newCheckpointsLsCmd(),
		newCheckpointsRmCmd(),
	)

	return checkpointsCmd
}

func newCheckpointsLsCmd() *cobra.Command {
	checkpointsLsCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List checkpoint runs",
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := dbConfig()
			if err != nil {
				log.Fatalf("main: %s", err)
			}
			if err := db.WithClient(cfg, func(dbClient db.Client) error {
				runs := []*domain.Run{}
				if err := dbClient.EachRun(func(run *domain.Run) {
					runs = append(runs, run)
				}); err != nil {
					return err
				}
				renderRuns(os.Stdout, runs)
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return checkpointsLsCmd
}

func newCheckpointsRmCmd() *cobra.Command {
	checkpointsRmCmd := &cobra.Command{
		Use:     "rm NAME...",
		Aliases: []string{"remove", "delete", "del"},
		Short:   "Remove checkpoint runs",
		Args:    cobra.MinimumNArgs(1),
		PreRun: func(_ *cobra.Command, _ []string) {
			initLogging()
		},
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := dbConfig()
			if err != nil {
				log.Fatalf("main: %s", err)
			}
			if err := db.WithClient(cfg, func(dbClient db.Client) error {
				if err := dbClient.RunDelete(args...); err != nil {
					return err
				}
				log.WithField("runs", args).Info("Removed checkpoint runs")
				return nil
			}); err != nil {
				log.Fatalf("main: %s", err)
			}
		},
	}
	return checkpointsRmCmd
}

func renderRuns(w io.Writer, runs []*domain.Run) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Picks", "Complete", "Strategy", "Targets", "Candidates", "Updated"})
	for _, run := range runs {
		table.Append([]string{
			run.Name,
			fmt.Sprint(run.Picks),
			fmt.Sprint(run.Complete),
			run.Strategy,
			fmt.Sprint(run.Fingerprint.Universe),
			fmt.Sprint(run.Fingerprint.Candidates),
			run.UpdatedAt.Format(time.RFC3339),
		})
	}
	table.Render()
}
