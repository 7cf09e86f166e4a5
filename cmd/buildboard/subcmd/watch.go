package subcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/suntrap/buildboard/kernel/engine"
	"github.com/suntrap/buildboard/kernel/health"
)

func init() {
	RootCmd.AddCommand(NewWatchCommand())
}

func NewWatchCommand() *cobra.Command {
	watchCmd := &WatchCommand{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll build status and report servers that changed",
		Args:  cobra.NoArgs,
		RunE:  watchCmd.run,
	}

	cmd.Flags().DurationVarP(&watchCmd.Interval, "interval", "i", 10*time.Second, "poll interval")
	cmd.Flags().IntVar(&watchCmd.Count, "count", 0, "stop after this many polls (0 runs until interrupted)")

	return cmd
}

type WatchCommand struct {
	Interval time.Duration
	Count    int
}

func (w *WatchCommand) run(cmd *cobra.Command, args []string) error {
	c, err := openContext()
	if err != nil {
		return err
	}
	defer c.Close()

	c.Health.OnTransition(func(t health.Transition) {
		fmt.Fprintf(cmd.ErrOrStderr(), "backend %s\n", t)
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return w.poll(ctx, engine.NewWatcher(c.Engine), cmd.OutOrStdout())
}

func (w *WatchCommand) poll(ctx context.Context, watcher *engine.Watcher, out io.Writer) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for i := 1; ; i++ {
		inv, diff, err := watcher.Refresh(ctx)
		if err != nil {
			logrus.Errorf("poll %d failed (%v)", i, err)
		} else if i == 1 {
			fmt.Fprintf(out, "%s watching %d servers\n", time.Now().Format("15:04:05"), inv.Count())
		} else {
			printDiff(out, diff)
		}

		if w.Count > 0 && i >= w.Count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func printDiff(out io.Writer, diff *engine.Diff) {
	if diff.Empty() {
		return
	}
	stamp := time.Now().Format("15:04:05")
	for _, ch := range diff.Added {
		fmt.Fprintf(out, "%s + %s %s %s\n", stamp, strings.ToUpper(ch.Region), ch.Current.RackID, ch.Current.Hostname)
	}
	for _, ch := range diff.Removed {
		fmt.Fprintf(out, "%s - %s %s %s\n", stamp, strings.ToUpper(ch.Region), ch.Previous.RackID, ch.Previous.Hostname)
	}
	for _, ch := range diff.Updated {
		fmt.Fprintf(out, "%s ~ %s %s %s %d%% -> %d%% %s\n", stamp, strings.ToUpper(ch.Region), ch.Current.RackID,
			ch.Current.Hostname, ch.Previous.Percent(), ch.Current.Percent(), ch.Current.Progress())
	}
}
