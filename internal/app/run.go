package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/vk/optspec/internal/codec"
	"github.com/vk/optspec/internal/ctxlog"
)

// Run executes the application in the mode the configuration selects.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.SpecPath != "" {
		return a.solveOnce(ctx)
	}
	return a.serve(ctx)
}

// solveOnce parses a single specification file, solves it, and prints the
// result as JSON.
func (a *App) solveOnce(ctx context.Context) error {
	path := a.config.SpecPath
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading specification: %w", err)
	}

	sp, err := codec.Parse(ctx, data, codec.DetectFormat(path))
	if err != nil {
		return fmt.Errorf("parsing specification: %w", err)
	}

	sess := a.store.Create(ctx, sp)
	result, err := a.store.Solve(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("solving: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.outW, string(out))
	return nil
}

// serve runs the HTTP API until ctx is cancelled, then shuts down
// gracefully.
func (a *App) serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    a.config.ListenAddr,
		Handler: a.server.Handler(),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("Shutting down HTTP server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("HTTP server shutdown failed.", "error", err)
		}
	}()

	a.logger.Info("HTTP server starting.", "address", a.config.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	a.logger.Debug("HTTP server stopped.")
	return nil
}
