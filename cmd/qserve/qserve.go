package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/willbeason/quantum-fractal/pkg/fractal"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

type options struct {
	addr       string
	dispatcher fractal.Dispatcher
	verbose    bool
}

func mainCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "qserve",
		Short: "Serve quantum-effect grids to display clients over websocket",
		Args:  cobra.ExactArgs(0),
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", ":8080", "listen address")
	finishDispatch := opts.dispatcher.AddDispatchFlags(flags)
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := finishDispatch(); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return runCmd(cmd.Context(), opts)
	}

	return cmd
}

func runCmd(ctx context.Context, opts *options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	engine := fractal.NewEngine(
		fractal.WithDispatcher(opts.dispatcher),
		fractal.WithLogger(logger))

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gridHandler(engine, logger))

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("serving %s: %w", opts.addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("stopped")
	return nil
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
