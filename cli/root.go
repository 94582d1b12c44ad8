// Package cli implements the pontaj command line: monthly reports, CSV
// exports, holiday lists and backup import against the SQLite database.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/warp/pontaj/config"
	"github.com/warp/pontaj/logging"
	"github.com/warp/pontaj/overtime"
	"github.com/warp/pontaj/store/sqlite"
)

// Deps holds the injectable dependencies of the commands.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer

	// OpenStore opens the store at path and returns its close function.
	OpenStore func(path string) (overtime.Store, func() error, error)
}

// DefaultDeps writes to the process streams and opens SQLite files.
func DefaultDeps() Deps {
	return Deps{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		OpenStore: func(path string) (overtime.Store, func() error, error) {
			s, err := sqlite.New(path)
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		},
	}
}

// app is the state shared by every command of one invocation.
type app struct {
	deps Deps
	cfg  *config.Config

	dbPath       string
	timeZone     string
	holidaysFile string

	store   overtime.Store
	closeFn func() error
	service *overtime.Service
	loc     *time.Location
	logger  *logging.Logger
}

// NewRootCmd builds the command tree. Defaults come from cfg.
func NewRootCmd(cfg *config.Config, deps Deps) *cobra.Command {
	a := &app{deps: deps, cfg: cfg}

	root := &cobra.Command{
		Use:   "pontaj",
		Short: "Overtime ledger for Romanian shift work",
		Long: `pontaj reports monthly overtime (OS), weekend/holiday hours, compensatory
leave (CS) and overtime that aged out without CS, from the same database the
pontaj server uses.

Months are 1-12. Durations are printed as "Hh Mm".`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	root.PersistentFlags().StringVar(&a.dbPath, "db", cfg.DBPath, "SQLite database path")
	root.PersistentFlags().StringVar(&a.timeZone, "tz", cfg.TimeZone, "Time zone for today and for timestamp dates")
	root.PersistentFlags().StringVar(&a.holidaysFile, "holidays", cfg.HolidaysFile, "TOML file with extra official holidays")

	root.AddCommand(
		a.summaryCmd(),
		a.breakdownCmd(),
		a.exportCmd(),
		a.holidaysCmd(),
		a.importCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := NewRootCmd(cfg, DefaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	loc, err := time.LoadLocation(a.timeZone)
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", a.timeZone, err)
	}
	a.loc = loc

	official := overtime.RomanianHolidays()
	if a.holidaysFile != "" {
		official, err = overtime.LoadHolidayTable(a.holidaysFile, official)
		if err != nil {
			return err
		}
	}

	a.logger = logging.New(logging.Config{
		Level:     logging.ParseLevel(a.cfg.LogLevel),
		Format:    a.cfg.LogFormat,
		Component: logging.ComponentCLI,
		Output:    a.deps.Stderr,
	})

	store, closeFn, err := a.deps.OpenStore(a.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", a.dbPath, err)
	}
	a.store, a.closeFn = store, closeFn
	a.service = overtime.NewService(store, official)
	a.logger.Debug("database opened", "path", a.dbPath)
	return nil
}

func (a *app) close() error {
	if a.closeFn == nil {
		return nil
	}
	err := a.closeFn()
	a.closeFn = nil
	return err
}
