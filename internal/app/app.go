package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dori/sticky/internal/config"
	"github.com/dori/sticky/internal/db"
	"github.com/dori/sticky/internal/images"
	"github.com/dori/sticky/internal/model"
	"github.com/dori/sticky/internal/tasks"
	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another process holds the data directory
var ErrAlreadyRunning = errors.New("another instance of sticky is already running")

// App holds the application state and dependencies
type App struct {
	Config *config.Config
	DB     *db.DB
	Images *images.Store
	Store  *tasks.Store
	Logger *slog.Logger

	lockFile *flock.Flock
	logFile  *os.File
	onChange func([]model.Entry)
}

// Option customizes App construction
type Option func(*App)

// WithChangeListener registers a callback invoked after every effective
// store mutation
func WithChangeListener(fn func([]model.Entry)) Option {
	return func(a *App) {
		a.onChange = fn
	}
}

// New creates a new application instance
func New(cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.openLogger(); err != nil {
		return nil, err
	}

	// Acquire lock to ensure a single writer
	if err := app.acquireLock(); err != nil {
		app.closeLogger()
		return nil, err
	}

	database, err := db.Open(cfg.DBFile())
	if err != nil {
		app.releaseLock()
		app.closeLogger()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database

	imageStore, err := images.New(cfg.ImagesDir(), images.Options{
		MaxDimension:       cfg.Images.MaxDimension,
		Quality:            cfg.Images.Quality,
		ThumbnailCacheSize: cfg.Images.ThumbnailCacheSize,
		Logger:             app.Logger.With("component", "images"),
	})
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create image store: %w", err)
	}
	app.Images = imageStore

	app.Store = tasks.New(database, tasks.Options{
		CascadeImages: cfg.Images.CascadeDelete,
		Images:        imageStore,
		OnChange:      app.onChange,
		Logger:        app.Logger.With("component", "tasks"),
	})

	app.Logger.Debug("application started",
		"data_dir", cfg.DataDir,
		"images_dir", imageStore.Dir(),
		"entries", app.Store.Len(),
		"cascade_images", cfg.Images.CascadeDelete,
	)
	return app, nil
}

// openLogger writes JSON logs to the log file when debug logging is on.
// The terminal belongs to the UI, so logs never go to stdout or stderr.
func (a *App) openLogger() error {
	if !a.Config.Log.Debug {
		a.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	path := a.Config.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f
	a.Logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

func (a *App) closeLogger() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// acquireLock acquires an exclusive file lock to prevent multiple writers
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "sticky.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	a.releaseLock()
	a.closeLogger()

	return errors.Join(errs...)
}
