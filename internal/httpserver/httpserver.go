package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

const readHeaderTimeout = 10 * time.Second

// Run serves until ctx is cancelled or the listener fails, then drains every
// connection. WriteTimeout stays zero because /ws and /events never finish on
// their own; per-write deadlines are set by the transports.
func (srv *HTTPServer) Run(ctx context.Context) error {
	srv.mapHandlers()

	if err := srv.subscriber.Start(); err != nil {
		return fmt.Errorf("internal.httpserver.Run.Start: %w", err)
	}

	addr := net.JoinHostPort(srv.cfg.Server.Host, strconv.Itoa(srv.cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           srv.gin,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	srv.logger.Infof(ctx, "HTTP server listening on %s", addr)

	var serveErr error
	select {
	case <-ctx.Done():
		srv.logger.Info(context.Background(), "shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	}

	return multierr.Append(serveErr, srv.shutdown(server))
}

// shutdown stops intake first so nothing new is dispatched while the
// connections are being closed.
func (srv *HTTPServer) shutdown(server *http.Server) error {
	srv.shuttingDown.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), srv.cfg.Server.ShutdownTimeout)
	defer cancel()

	err := srv.subscriber.Shutdown(ctx)
	err = multierr.Append(err, srv.uc.Shutdown(ctx))
	err = multierr.Append(err, server.Shutdown(ctx))

	if err != nil {
		srv.logger.Errorf(ctx, "internal.httpserver.shutdown: %v", err)
		return err
	}
	srv.logger.Info(ctx, "HTTP server stopped")
	return nil
}
