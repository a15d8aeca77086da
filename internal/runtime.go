package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// serve listens on c.address and serves h until the context is cancelled
// or SIGINT/SIGTERM arrives, then drains connections and runs the shutdown
// hooks. Startup hooks see the listener already bound.
func (c *runConfig) serve(h http.Handler) error {
	ctx, stop := signal.NotifyContext(c.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", c.address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", c.address, err)
	}
	for _, hook := range c.startup {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	srv := &http.Server{
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(c.logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c.logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.logger.Info("shutting down server")

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.shutdownTimeout)
		defer cancel()

		errs := []error{srv.Shutdown(sctx)}
		for _, hook := range c.shutdown {
			if err := hook(sctx); err != nil {
				c.logger.Error("shutdown hook failed", slog.Any("error", err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		c.logger.Error("server stopped with errors", slog.Any("error", err))
		return err
	}
	c.logger.Info("shutdown completed")
	return nil
}
