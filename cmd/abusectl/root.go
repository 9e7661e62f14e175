package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/abuse-backend/internal/services"
)

// env holds what the commands need from the outside world.
type env struct {
	cfg    *config.Config
	openDB func(cfg *config.Config) (*gorm.DB, func(), error)
}

func defaultEnv() *env {
	return &env{
		cfg: config.Load(),
		openDB: func(cfg *config.Config) (*gorm.DB, func(), error) {
			db, err := database.Connect(cfg)
			if err != nil {
				return nil, nil, err
			}
			return db, func() { _ = database.Close(db) }, nil
		},
	}
}

// core is the wiring shared by every command that touches reports.
type core struct {
	db        *gorm.DB
	store     *services.ReportStore
	ingestion *services.IngestionService
}

func (e *env) withCore(fn func(c *core) error) error {
	db, closeDB, err := e.openDB(e.cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	logger := slog.Default()
	store := services.NewReportStore(db, services.WithStoreLogger(logger))
	ingestion := services.NewIngestionService(store, services.NewFeedClient(e.cfg.ExternalFetchTimeout), nil, logger)
	return fn(&core{db: db, store: store, ingestion: ingestion})
}

func newRootCommand(e *env) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "abusectl",
		Short:         "Operate the abuse report store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(logging.NewJSONHandler(cmd.ErrOrStderr(), verbose || e.cfg.IsDevelopment())))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		migrateCommand(e),
		importCommand(e),
		fetchCommand(e),
		listCommand(e),
		historyCommand(e),
		updateCommand(e),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func printBatch(w io.Writer, result *services.BatchResult) {
	fmt.Fprintf(w, "created %d, failed %d\n", result.Created, len(result.Failures))
	for _, f := range result.Failures {
		fmt.Fprintf(w, "row %d (%s): %s: %s\n", f.Row, f.DomainName, f.Code(), f.Reason())
	}
}

func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
