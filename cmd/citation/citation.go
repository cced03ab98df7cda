package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/onrik/logrus/filename"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Yuheng-Li/citation/db"
)

var (
	DBDriver = "bolt"
	DBFile   = "citation.bolt"
	Quiet    bool
	Verbose  bool

	PapersDir         = "conference_papers"
	ActiveAuthorsFile = "active_authors.json"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "citation",
		Short: "Pick a minimal set of conference papers covering the active authors",
		Long:  "Extracts conference proceedings, finds the active authors of a field and greedily selects the fewest papers whose bylines cover all of them",
	}

	rootCmd.PersistentFlags().BoolVarP(&Quiet, "quiet", "q", Quiet, "Activate quiet log output")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", Verbose, "Activate verbose log output")
	rootCmd.PersistentFlags().StringVarP(&DBDriver, "driver", "D", DBDriver, "Checkpoint DB driver: bolt or postgres")
	rootCmd.PersistentFlags().StringVarP(&DBFile, "db", "b", DBFile, "Path to BoltDB checkpoint file, or a connection string for postgres")

	rootCmd.AddCommand(
		newExtractCmd(),
		newActiveAuthorsCmd(),
		newAuthorStatsCmd(),
		newMatchNamesCmd(),
		newMinPapersCmd(),
		newCheckpointsCmd(),
	)

	return rootCmd
}

func main() {
	if err := NewConfig().Do(); err != nil {
		log.Fatalf("main: %s", err)
	}
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initLogging() {
	level := log.InfoLevel
	if Verbose {
		log.AddHook(filename.NewHook())
		level = log.DebugLevel
	}
	if Quiet {
		level = log.ErrorLevel
	}
	log.SetLevel(level)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func dbConfig() (db.Config, error) {
	return db.NewConfig(DBDriver, DBFile)
}

func emitJSON(x interface{}) error {
	bs, err := json.MarshalIndent(x, "", "    ")
	if err != nil {
		return err
	}
	fmt.Printf("%v\n", string(bs))
	return nil
}
