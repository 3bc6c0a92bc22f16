// Command lifecycle serves the lifecycle lab page: a root view hosting a
// function style view and a class style view, each logging its lifecycle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/livelab/live"
	"github.com/livelab/live/config"
	"github.com/livelab/live/title"
	"github.com/livelab/live/views"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		slog.Error("lifecycle", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("lifecycle", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("config", "lifecycle.yaml", "path to the configuration file")
	addr := fs.String("addr", "", "listen address, overrides the configuration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, cfg, logger.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server", "link", "http://"+displayAddr(cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Log.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", cfg.Log.Format)
}

func newMux(ctx context.Context, cfg *config.Config, logs slog.Handler) *http.ServeMux {
	display := title.New("")
	h := views.NewHandler(views.Options{
		InitNumber:   cfg.Seed(),
		Console:      cfg.ConsoleEnabled(),
		ConsoleLines: cfg.Console.Lines,
		Handler:      logs,
		Title:        display,
	})

	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		secret = []byte(live.NewID())
	}
	ps := live.NewPubSub(ctx, live.NewLocalTransport())
	engine := live.NewHttpHandler(ctx, h,
		live.WithSessionStore(live.NewCookieStore(cfg.Session.Name, secret)),
		live.WithStateTTL(cfg.StateTTL),
		live.WithWebsocketMaxMessageSize(cfg.Websocket.MaxMessageSize),
		live.WithBroadcastLimit(cfg.Broadcast.Interval, cfg.Broadcast.Burst),
		live.WithPubSub(ps, live.EventTitle),
		live.WithTitle(display),
	)

	mux := http.NewServeMux()
	mux.Handle("/", engine)
	mux.Handle(live.JavascriptPath, live.Javascript{})
	return mux
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
