package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

func (r *Runtime) Run(ctx context.Context) error {
	r.logger.Info("opsline runtime starting", "addr", r.cfg.HTTPAddr, "environment", r.cfg.Environment)

	// Connect MCP servers before serving so the first fallback turn already
	// sees the imported tools.
	bootstrapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	r.mcpManager.Bootstrap(bootstrapCtx)
	cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.watcher.Start(groupCtx)
	})
	group.Go(func() error {
		return r.scheduler.Start(groupCtx)
	})
	group.Go(func() error {
		err := r.httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpServer.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
