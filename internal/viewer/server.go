// Package viewer serves the task log to a browser: the raw task file, a
// static front end with client-side tag filtering, and an SSE stream that
// fires when the file changes on disk.
package viewer

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"tasklog/internal/sse"
	"tasklog/internal/storage"
	"tasklog/internal/taskstore"
)

//go:embed static
var staticFiles embed.FS

// NewRouter builds the viewer router over the given base directory.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(store storage.Provider, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/tasks.json", func(w http.ResponseWriter, _ *http.Request) {
		data, err := store.Read(taskstore.FileName)
		if err != nil {
			http.Error(w, "task file not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(data)
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/*", http.FileServerFS(static))

	return r
}

// Run serves the viewer until ctx is cancelled or a shutdown signal
// arrives.
func Run(ctx context.Context, dir *storage.Dir, addr string, logger *slog.Logger) error {
	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: NewRouter(dir, broker),
	}

	logger.Info("viewer starting", slog.String("address", addr), slog.String("dir", dir.Root()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the base directory and push SSE updates on task-file changes.
	g.Go(func() error {
		if err := watchTaskFile(gCtx, dir.Root(), broker, logger); err != nil {
			logger.Warn("task file watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("viewer shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	return g.Wait()
}
