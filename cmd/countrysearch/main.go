package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/countrysearch/internal/api"
	"github.com/thesavant42/countrysearch/internal/app"
	"github.com/thesavant42/countrysearch/internal/catalog"
	"github.com/thesavant42/countrysearch/internal/config"
	"github.com/thesavant42/countrysearch/internal/store"
	"github.com/thesavant42/countrysearch/internal/ui"
)

const logFileName = "countrysearch.log"

func main() {
	configFlag := flag.String("config", "", "Path to YAML config file")
	dbFlag := flag.String("db", "", "Path to SQLite database file")
	storeFlag := flag.String("store", "", "Storage backend: sqlite, memory or redis")
	logLevelFlag := flag.String("log-level", "", "Log level: debug, info, warn, error")
	quietFlag := flag.Bool("quiet", false, "No spinner or status output")

	queryFlag := flag.String("q", "", "Print countries whose name contains this text")
	pageFlag := flag.Int("page", 1, "Result page to print with -q or -all")
	allFlag := flag.Bool("all", false, "Print all countries")
	historyFlag := flag.Bool("history", false, "Print recent searches")
	pickFlag := flag.Bool("pick", false, "Pick a recent search and run it again")
	askFlag := flag.Bool("ask", false, "Prompt for a query and print the matches")
	favoritesFlag := flag.Bool("favorites", false, "Print favorite countries")
	favFlag := flag.String("fav", "", "Toggle a country in the favorites")
	clearFlag := flag.Bool("clear-cache", false, "Delete every stored key")
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to load config: %v", err))
		os.Exit(1)
	}
	if *dbFlag != "" {
		cfg.DBPath = *dbFlag
	}
	if *storeFlag != "" {
		cfg.Store = *storeFlag
	}
	if *logLevelFlag != "" {
		cfg.Log.Level = *logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		ui.PrintError(fmt.Sprintf("Invalid configuration: %v", err))
		os.Exit(1)
	}

	cliMode := *queryFlag != "" || *allFlag || *historyFlag || *pickFlag || *askFlag ||
		*favoritesFlag || *favFlag != "" || *clearFlag

	logger, closeLog := newLogger(cfg, !cliMode)
	defer closeLog()

	s, err := store.Open(store.Options{
		Backend:  cfg.Store,
		Path:     cfg.DBPath,
		MaxBytes: cfg.MaxStoreBytes,
		Redis: store.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		},
	})
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to open storage: %v", err))
		os.Exit(1)
	}
	defer s.Close()

	keys := catalog.KeyRaw
	if cfg.NormalizeCacheKeys {
		keys = catalog.KeyNormalized
	}

	var last app.Status
	svc := app.New(
		api.NewCountriesClient(cfg.APIURL, cfg.HTTPTimeout, logger),
		s,
		app.Options{
			PageSize:       cfg.PageSize,
			MinQueryLength: cfg.MinQueryLength,
			HistoryLimit:   cfg.HistoryLimit,
			CacheTTL:       cfg.CacheTTL,
			Locale:         cfg.Locale,
			KeyPolicy:      keys,
			Logger:         logger,
			OnStatus:       func(st app.Status) { last = st },
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !cliMode {
		if err := ui.RunSearchTUI(ctx, svc, logger); err != nil {
			ui.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	r := runner{svc: svc, quiet: *quietFlag}
	switch {
	case *clearFlag:
		err = r.clear()
	case *favFlag != "":
		err = r.toggleFavorite(*favFlag)
	case *historyFlag:
		ui.WriteList(os.Stdout, "Recent searches", svc.History(), "No searches yet.")
	case *favoritesFlag:
		ui.WriteList(os.Stdout, "Favorite countries", svc.Favorites(), "No favorites yet.")
	case *pickFlag:
		err = r.pick(ctx, *pageFlag)
	case *askFlag:
		err = r.ask(ctx, cfg.MinQueryLength, *pageFlag)
	case *allFlag:
		err = r.all(ctx, *pageFlag)
	default:
		err = r.search(ctx, *queryFlag, *pageFlag)
	}

	if err != nil {
		if last.IsError() {
			ui.PrintStatus(last)
		} else {
			ui.PrintError(err.Error())
		}
		s.Close()
		os.Exit(1)
	}
}

// newLogger writes to a file next to the database in TUI mode so the
// screen stays clean, and to stderr otherwise
func newLogger(cfg *config.Config, tui bool) (*log.Logger, func()) {
	var out io.Writer = os.Stderr
	closeFn := func() {}

	if tui {
		path := cfg.Log.File
		if path == "" {
			path = filepath.Join(filepath.Dir(cfg.DBPath), logFileName)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			out = io.Discard
		} else {
			out = f
			closeFn = func() { f.Close() }
		}
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "countrysearch",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
		logger.Warn("Unknown log level, using info", "level", cfg.Log.Level)
	}
	logger.SetLevel(level)
	return logger, closeFn
}

// runner holds the one-shot command line operations
type runner struct {
	svc   *app.Service
	quiet bool
}

func (r runner) load(ctx context.Context) error {
	if r.quiet {
		return r.svc.LoadCatalog(ctx)
	}
	return ui.LoadWithSpinner(ctx, r.svc)
}

func (r runner) search(ctx context.Context, query string, page int) error {
	if err := r.svc.ValidateQuery(query); err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	view, err := r.svc.Search(query)
	if err != nil {
		return err
	}
	if page > 1 {
		view = r.svc.GoToPage(page)
	}
	ui.WriteResults(os.Stdout, view, r.svc.IsFavorite)
	return nil
}

func (r runner) all(ctx context.Context, page int) error {
	if err := r.load(ctx); err != nil {
		return err
	}
	view := r.svc.ShowAll()
	if page > 1 {
		view = r.svc.GoToPage(page)
	}
	ui.WriteResults(os.Stdout, view, r.svc.IsFavorite)
	return nil
}

func (r runner) pick(ctx context.Context, page int) error {
	query, err := ui.PromptHistoryPick(r.svc.History())
	if errors.Is(err, ui.ErrNoHistory) {
		ui.WriteList(os.Stdout, "Recent searches", nil, "No searches yet.")
		return nil
	}
	if err != nil {
		return err
	}
	return r.search(ctx, query, page)
}

func (r runner) ask(ctx context.Context, minLength, page int) error {
	query, err := ui.PromptForQuery(minLength)
	if err != nil {
		return err
	}
	return r.search(ctx, query, page)
}

func (r runner) toggleFavorite(name string) error {
	fav, _, err := r.svc.ToggleFavorite(name)
	if err != nil {
		return err
	}
	if fav {
		ui.PrintSuccess(fmt.Sprintf("Added %s to favorites", name))
	} else {
		ui.PrintSuccess(fmt.Sprintf("Removed %s from favorites", name))
	}
	return nil
}

func (r runner) clear() error {
	if err := r.svc.ClearStorage(); err != nil {
		return err
	}
	if !r.quiet {
		ui.PrintSuccess("Storage cleared")
	}
	return nil
}
