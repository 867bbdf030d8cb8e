package main

// serve.go has the serve command which runs the HTTP/websocket server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diconium/schemapruner/internal/server"
	"github.com/diconium/schemapruner/internal/upstream"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run an HTTP server that prunes the schema to posted queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	a.schemaFlags(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on, overrides server.addr")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	// without a schema source every request has to include its schema
	var loader server.Loader
	if a.cfg.Upstream.URL != "" || a.cfg.Upstream.Schema != "" {
		l, err := a.loader()
		if err != nil {
			return err
		}
		if a.cfg.Cache.Enabled && a.cfg.Cache.TTL > 0 {
			cache, err := upstream.NewCache(ctx, l, a.cfg.Cache.TTL, a.log)
			if err != nil {
				return err
			}
			defer cache.Close()
			l = cache
		}
		loader = l
	}

	srv := &http.Server{
		Addr: a.cfg.Server.Addr,
		Handler: server.New(loader,
			server.Logger(a.log),
			server.MaxBody(a.cfg.Server.MaxBody),
			server.ReadLimit(a.cfg.WS.ReadLimit),
			server.InitialTimeout(a.cfg.WS.InitialTimeout),
		),
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	a.log.Info().Msg("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
