package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/lectern/internal/adapter"
	"github.com/mmcdole/lectern/internal/adapter/source"
	"github.com/mmcdole/lectern/internal/adapter/source/boltdb"
	"github.com/mmcdole/lectern/internal/authoring"
	"github.com/mmcdole/lectern/internal/catalog"
	"github.com/mmcdole/lectern/internal/domain"
	"github.com/mmcdole/lectern/internal/search"
	"github.com/mmcdole/lectern/internal/session"
	"github.com/mmcdole/lectern/internal/store"
	"github.com/mmcdole/lectern/internal/tui"
	"github.com/mmcdole/lectern/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                        \r"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("lectern %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lectern                 browse your courses")
	fmt.Fprintln(os.Stderr, "  lectern snapshot FILE   copy your catalog into an offline bolt file")
	fmt.Fprintln(os.Stderr, "  lectern logout          end the session and forget stored cookies")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}

// app holds everything wired from the config
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	backend  source.Backend
	store    *store.MemoryStore
	cache    *catalog.Cache
	sessions *session.Service
	closers  []io.Closer
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func setup() (*app, error) {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("server is not configured; set server.url (or server.bolt_path) in the config file")
	}

	a := &app{cfg: cfg}
	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		a.closers = append(a.closers, logCloser)
	}
	slog.SetDefault(logger)
	a.logger = logger

	backend, closer, err := source.Open(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open %s backend: %w", cfg.Server.Type, err)
	}
	a.closers = append(a.closers, closer)
	a.backend = backend

	a.store = store.New()
	a.cache = catalog.NewCache(backend, a.store, catalog.Options{FetchConcurrency: cfg.Cache.FetchConcurrency}, logger)
	a.sessions = session.NewService(backend, a.cache, cfg.Cache.WarmOnStart, logger)
	return a, nil
}

func run(args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting lectern", "version", Version, "backend", a.cfg.Server.Type)

	ctx := context.Background()
	if len(args) > 0 {
		switch args[0] {
		case "logout":
			return runLogout(ctx, a)
		case "snapshot":
			if len(args) != 2 {
				return fmt.Errorf("usage: lectern snapshot FILE")
			}
			if err := signIn(ctx, a); err != nil {
				return err
			}
			return runSnapshot(ctx, a, args[1])
		default:
			usage()
			return fmt.Errorf("unknown command %q", args[0])
		}
	}

	if err := signIn(ctx, a); err != nil {
		return err
	}
	return runBrowser(a)
}

// signIn resumes a stored session or prompts for credentials
func signIn(ctx context.Context, a *app) error {
	res, err := a.sessions.Resume(ctx)
	if err == nil {
		a.logger.Info("resumed session", "owner", res.Owner())
		return nil
	}
	if !errors.Is(err, domain.ErrNotSignedIn) {
		return fmt.Errorf("failed to check session: %w", err)
	}

	flow := source.NewAuthFlow(a.cfg, a.sessions, a.logger)
	res, err = flow.Run(ctx)
	if err != nil {
		return fmt.Errorf("sign in failed: %w", err)
	}

	// remember the email for next time
	if a.cfg.Server.Email != res.Email {
		a.cfg.Server.Email = res.Email
		if err := adapter.SaveConfig(a.cfg); err != nil {
			a.logger.Warn("failed to save config", "error", err)
		}
	}
	return nil
}

func runBrowser(a *app) error {
	model := tui.NewModel(tui.Deps{
		Cache:     a.cache,
		Authoring: authoring.NewService(a.backend, a.cache, a.logger),
		Session:   a.sessions,
		Search:    search.NewService(catalog.NewQueries(a.store), a.logger),
		Opener:    adapter.NewLauncher(a.cfg.Viewer.Command, a.cfg.Viewer.Args, a.logger),
		Logger:    a.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	if model.SignedOut {
		if err := adapter.ClearSession(a.cfg); err != nil {
			a.logger.Warn("failed to clear saved session", "error", err)
		}
		fmt.Println("Signed out.")
	}
	a.logger.Info("shutting down")
	return nil
}

func runLogout(ctx context.Context, a *app) error {
	if _, err := a.sessions.Resume(ctx); err != nil && !errors.Is(err, domain.ErrNotSignedIn) {
		a.logger.Warn("could not verify session before sign out", "error", err)
	}
	if err := a.sessions.SignOut(ctx); err != nil {
		a.logger.Warn("backend sign out failed", "error", err)
	}
	if err := adapter.ClearSession(a.cfg); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

// runSnapshot copies the signed-in teacher's catalog into a bolt file
func runSnapshot(ctx context.Context, a *app, path string) error {
	target, err := boltdb.Open(path, a.logger)
	if err != nil {
		return err
	}
	defer target.Close()

	type result struct {
		res boltdb.ImportResult
		err error
	}
	done := make(chan result, 1)
	go func() {
		res, err := target.Import(ctx, a.sessions.Owner(), a.backend)
		done <- result{res, err}
	}()

	frames := styles.SpinnerFrames
	frame := 0
	fmt.Printf("\r%s Copying catalog...", frames[frame])
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case r := <-done:
			fmt.Print(clearSpinnerLine)
			if r.err != nil {
				return fmt.Errorf("snapshot failed: %w", r.err)
			}
			fmt.Printf("✓ Saved %d courses, %d divisions, %d contents to %s\n",
				r.res.Courses, r.res.Divisions, r.res.Contents, path)
			return nil
		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Copying catalog...", frames[frame%len(frames)])
		}
	}
}
