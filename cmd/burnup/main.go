package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/burnup/internal/chart"
	"github.com/alexanderramin/burnup/internal/cli"
	"github.com/alexanderramin/burnup/internal/config"
	"github.com/alexanderramin/burnup/internal/db"
	"github.com/alexanderramin/burnup/internal/history"
	"github.com/alexanderramin/burnup/internal/repository"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes "the task you named does not exist" from
// every other failure, so scripts can tell the two apart.
func exitCode(err error) int {
	var notFound *history.TaskNotFoundError
	if errors.As(err, &notFound) {
		return 2
	}
	return 1
}

func run() error {
	cfg, err := config.Load(config.DefaultFileName)
	if err != nil {
		return err
	}

	// DB path: env var, then config file, then ~/.burnup/burnup.db.
	dbPath := os.Getenv("BURNUP_DB")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".burnup", "burnup.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	progressRepo := repository.NewSQLiteProgressRepo(database)
	planRepo := repository.NewSQLitePlanRepo(database)
	violationRepo := repository.NewSQLiteViolationRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		Coord:  history.NewCoordinator(uow, progressRepo, planRepo, violationRepo),
		Charts: chart.NewBuilder(progressRepo, planRepo),
		Cfg:    cfg,
	}

	return cli.NewRootCmd(app).Execute()
}
