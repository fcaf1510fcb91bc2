package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-board/internal/config"
	"github.com/vancomm/minesweeper-board/internal/database"
	"github.com/vancomm/minesweeper-board/internal/middleware"
	"github.com/vancomm/minesweeper-board/internal/mines"
	"github.com/vancomm/minesweeper-board/internal/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger     *slog.Logger
	router     *http.ServeMux
	db         *pgxpool.Pool
	store      repository.Store
	cookies    *config.Cookies
	ws         *config.WebSocket
	placement  mines.Placement
	sessionTTL time.Duration
	origins    []string
}

func New(logger *slog.Logger) *App {
	router := http.NewServeMux()

	app := &App{
		logger: logger,
		router: router,
	}

	return app
}

// Setup reads the configuration and opens the session store.
func (a *App) Setup(ctx context.Context) error {
	kind, err := config.SessionStore()
	if err != nil {
		return err
	}

	switch kind {
	case config.StorePostgres:
		db, migrator, err := database.ConnectAndMigrate(ctx, database.Migrations)
		if err != nil {
			return fmt.Errorf("unable to connect to db: %w", err)
		}
		migrator.Close()
		a.db = db
		a.store = repository.New(db)
	default:
		a.store = repository.NewMemory()
	}
	a.logger.Info("session store ready", slog.String("store", string(kind)))

	j, err := config.NewJWT()
	if err != nil {
		return err
	}

	a.cookies, err = config.NewCookies(j)
	if err != nil {
		return err
	}

	a.ws, err = config.NewWebSocket()
	if err != nil {
		return err
	}

	a.placement, err = config.Placement()
	if err != nil {
		return err
	}

	a.sessionTTL, err = config.SessionTTL()
	if err != nil {
		return err
	}

	a.origins = config.AllowedOrigins()

	a.loadRoutes()

	return nil
}

func (a *App) Handler() http.Handler {
	var h http.Handler = a.router
	if basePath := config.BasePath(); basePath != "" {
		h = http.StripPrefix(basePath, h)
	}
	return middleware.Wrap(
		h,
		middleware.Auth(a.logger, a.cookies),
		middleware.Cors(a.origins),
		middleware.Recover(a.logger),
		middleware.Logging(a.logger),
	)
}

// sweep deletes sessions idle for longer than the session TTL.
func (a *App) sweep(ctx context.Context, now time.Time) {
	deleted, err := a.store.DeleteStaleGameSessions(ctx, now.Add(-a.sessionTTL))
	if err != nil {
		a.logger.Error("unable to delete stale sessions", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		a.logger.Info("deleted stale sessions", slog.Int64("count", deleted))
	}
}

func (a *App) runJanitor(ctx context.Context) error {
	interval := min(max(a.sessionTTL/10, time.Minute), time.Hour)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			a.sweep(ctx, now)
		}
	}
}

// Start serves until ctx is done, then shuts the server down.
func (a *App) Start(ctx context.Context) error {
	port := config.Port()
	server := &http.Server{
		Addr:              port,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening", slog.String("addr", port))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	g.Go(func() error {
		return a.runJanitor(gCtx)
	})

	err := g.Wait()
	a.Close()
	return err
}

func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}
