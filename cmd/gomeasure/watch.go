package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/philipparndt/gomeasure/internal/app"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Print the labels of a drawing every time the file changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", app.DefaultWatchDebounce, "Delay before reloading after a change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]

	a, err := openSession(filename, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	printLabels(out, filename, a.Control.Labels())

	ctx, stop := signalContext(cmd)
	defer stop()

	logger.Info("watching for changes", "file", filename)
	return a.Watch(ctx, filename, watchDebounce, func(err error) {
		if err != nil {
			return
		}
		printLabels(out, filename, a.Control.Labels())
	})
}

// signalContext returns a context cancelled on interrupt
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
