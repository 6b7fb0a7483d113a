package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"fjacquet/budgea-salary/cmd/common"
	"fjacquet/budgea-salary/cmd/extract"
	"fjacquet/budgea-salary/cmd/recipients"
	"fjacquet/budgea-salary/cmd/root"
	"fjacquet/budgea-salary/cmd/transfer"
	"fjacquet/budgea-salary/internal/config"
)

func init() {
	// Load .env silently; logging is configured once the command runs
	_, _ = config.LoadEnv()

	root.Init()

	root.Cmd.AddCommand(transfer.Cmd)
	root.Cmd.AddCommand(extract.Cmd)
	root.Cmd.AddCommand(recipients.Cmd)
}

func main() {
	os.Exit(run())
}

// shutdownGrace is how long an interrupted command gets to return on its own
// before the process cleans up and exits anyway, e.g. when blocked in a prompt.
const shutdownGrace = 3 * time.Second

func run() int {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)

	cleanup := func() {
		if err := root.Close(); err != nil {
			root.GetLogger().WithError(err).Warn("Failed to clean up workspace")
		}
	}
	abort := func() {
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		os.Exit(1)
	}

	interrupted, err := runWithSignals(signals, shutdownGrace, root.Cmd.ExecuteContext, cleanup, abort)
	if interrupted {
		fmt.Fprintln(os.Stderr, "\nInterrupted")
		return 1
	}
	if err != nil {
		common.Fail(err)
		return 1
	}
	return 0
}

// runWithSignals runs execute with a context cancelled by the first signal
// and calls cleanup once execute returns. If execute is still running grace
// after the signal, the watcher calls cleanup then abort itself; cleanup must
// therefore tolerate a second call.
func runWithSignals(signals <-chan os.Signal, grace time.Duration,
	execute func(ctx context.Context) error, cleanup, abort func()) (bool, error) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	stopped := make(chan struct{})
	var interrupted atomic.Bool
	go func() {
		defer close(stopped)
		select {
		case <-signals:
		case <-done:
			return
		}
		interrupted.Store(true)
		cancel()
		select {
		case <-done:
		case <-time.After(grace):
			cleanup()
			abort()
		}
	}()

	err := execute(ctx)
	cleanup()
	close(done)
	<-stopped

	return interrupted.Load(), err
}
