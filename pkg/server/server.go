// Package server runs HTTP servers until their context is cancelled and then
// drains them within a shutdown timeout.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// SignalContext is cancelled on SIGINT, SIGTERM, SIGHUP or SIGQUIT.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Run serves on srv.Addr until ctx is done. Extra workers (Kafka consumers,
// hubs) run in the same group; the first failure stops everything.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *zap.SugaredLogger,
	workers ...func(ctx context.Context) error) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, srv, ln, shutdownTimeout, log, workers...)
}

func Serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration,
	log *zap.SugaredLogger, workers ...func(ctx context.Context) error) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infow("http server started", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	for _, w := range workers {
		w := w
		g.Go(func() error { return w(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnw("http server shutdown", "error", err)
			return err
		}
		log.Infow("http server stopped")
		return nil
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
