// sleepreport estimates nightly sleep from the pressure logger's CSV journal.
//
// Usage:
//
//	sleepreport [-config path] [-csv path] [-threshold n] [-save] [-db path] [-from-db] DAYS
//
// DAYS is the number of whole days to evaluate, ending at midnight today.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/nerrad567/pressure-logger/internal/infrastructure/config"
	"github.com/nerrad567/pressure-logger/internal/infrastructure/database"
	"github.com/nerrad567/pressure-logger/internal/sleep"
	_ "github.com/nerrad567/pressure-logger/migrations"
)

// errUsage marks argument errors; main exits with status 2 for them.
var errUsage = errors.New("usage error")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	csvPath    string
	dbPath     string
	threshold  int
	save       bool
	fromDB     bool
	days       int
}

func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("sleepreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "config file (defaults and PRESSURE_* env apply when empty)")
	fs.StringVar(&opts.csvPath, "csv", "", "CSV journal to read (overrides csv.path)")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite database (overrides database.path, implies -save)")
	fs.IntVar(&opts.threshold, "threshold", -1, "pressure above which the bed is occupied (overrides sleep.bed_threshold)")
	fs.BoolVar(&opts.save, "save", false, "store daily totals in SQLite")
	fs.BoolVar(&opts.fromDB, "from-db", false, "report stored totals instead of reading the CSV")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: sleepreport [flags] DAYS")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return opts, fmt.Errorf("%w: expected exactly one DAYS argument", errUsage)
	}

	days, err := strconv.Atoi(fs.Arg(0))
	if err != nil || days <= 0 {
		return opts, fmt.Errorf("%w: DAYS must be a positive integer, got %q", errUsage, fs.Arg(0))
	}
	opts.days = days

	if opts.dbPath != "" {
		opts.save = true
	}
	if opts.fromDB && opts.save {
		return opts, fmt.Errorf("%w: -from-db cannot be combined with -save", errUsage)
	}
	return opts, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.csvPath != "" {
		cfg.CSV.Path = opts.csvPath
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	if opts.threshold >= 0 {
		cfg.Sleep.BedThreshold = opts.threshold
	}

	analyzeOpts := sleep.Options{
		Days:      opts.days,
		Threshold: int64(cfg.Sleep.BedThreshold),
		Now:       time.Now(),
	}

	if opts.fromDB {
		return reportFromDB(ctx, cfg.Database, analyzeOpts, stdout)
	}

	samples, err := sleep.LoadFile(cfg.CSV.Path, time.Local)
	if err != nil {
		return err
	}

	report, err := sleep.Analyze(samples, analyzeOpts)
	if err != nil {
		return err
	}
	if err := report.Format(stdout); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if !opts.save {
		return nil
	}

	db, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Read-only after Save commits

	if err := sleep.NewStore(db).Save(ctx, report); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	fmt.Fprintf(stdout, "\nSaved %d day(s) to %s\n", len(report.Daily), db.Path())
	return nil
}

// reportFromDB prints totals previously saved for the same window.
func reportFromDB(ctx context.Context, cfg config.DatabaseConfig, opts sleep.Options, stdout io.Writer) error {
	db, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // Read-only

	// Analyze with no samples yields the window bounds for these options.
	report, err := sleep.Analyze(nil, opts)
	if err != nil {
		return err
	}

	last := report.End.AddDate(0, 0, -1)
	report.Daily, err = sleep.NewStore(db).Daily(ctx, report.Start.Format(time.DateOnly), last.Format(time.DateOnly))
	if err != nil {
		return err
	}
	for _, d := range report.Daily {
		report.TotalSeconds += d.SleepSeconds
	}

	return report.Format(stdout)
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
