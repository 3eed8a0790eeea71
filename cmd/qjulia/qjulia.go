package main

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"github.com/willbeason/quantum-fractal/pkg/fractal"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"os"
	"time"
)

type options struct {
	params     fractal.Params
	dispatcher fractal.Dispatcher
	out        string
	timeout    time.Duration
	verbose    bool
}

func mainCmd() *cobra.Command {
	opts := &options{params: fractal.DefaultParams()}

	cmd := &cobra.Command{
		Use:   "qjulia",
		Short: "Compute a quantum-effect escape-time grid",
		Args:  cobra.ExactArgs(0),
	}

	flags := cmd.Flags()
	opts.params.AddFlags(flags)
	finishDispatch := opts.dispatcher.AddDispatchFlags(flags)
	flags.StringVarP(&opts.out, "out", "o", "", "write a grayscale PNG of the counts to this path")
	flags.DurationVar(&opts.timeout, "timeout", 0, "cancel the computation after this long, 0 for no limit")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := finishDispatch(); err != nil {
			return err
		}
		// At this point usage information has already been printed if obviously incorrect.
		cmd.SilenceUsage = true
		return runCmd(cmd.Context(), opts)
	}

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runCmd(ctx context.Context, opts *options) error {
	logger := newLogger(opts.verbose)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	res, err := fractal.Compute(ctx, opts.params,
		fractal.WithDispatcher(opts.dispatcher),
		fractal.WithLogger(logger))
	if fractal.IsCancelled(err) {
		logger.Info("computation cancelled", "cause", err)
		return nil
	}
	if err != nil {
		return err
	}
	defer res.Release()

	stats := res.Grid.Stats()
	logger.Info("computed grid",
		"effect", res.Effect,
		"width", res.Grid.Width,
		"height", res.Grid.Height,
		"elapsed", res.Elapsed)
	fmt.Printf("min %d  max %d  mean %.3f  escaped %.1f%%\n",
		stats.Min, stats.Max, stats.Mean, 100*stats.EscapedFraction())

	if opts.out == "" {
		return nil
	}

	if err := writePNG(opts.out, res.Grid); err != nil {
		return err
	}
	logger.Info("wrote image", "path", opts.out)

	return nil
}

// writePNG stores counts as 16-bit gray, scaled so MaxIter is white.
func writePNG(path string, g *fractal.Grid) error {
	img := image.NewGray16(image.Rect(0, 0, g.Width, g.Height))
	scale := float64(math.MaxUint16) / float64(g.MaxIter)

	for y := range g.Height {
		for x, c := range g.Row(y) {
			img.SetGray16(x, y, color.Gray16{Y: uint16(float64(c) * scale)})
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	err = png.Encode(f, img)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	return f.Close()
}

func main() {
	ctx := context.Background()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
