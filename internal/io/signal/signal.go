// Package signal provides graceful-shutdown signal handling, grounded on
// the teacher's own internal/io/signal but adapted from its interactive
// "hit Ctrl+C twice" client prompt to a single clean shutdown trigger
// suited to a long-running server process.
package signal

import (
	"context"
	"os"
	gosignal "os/signal"
	"syscall"
)

// ShutdownCh returns a channel that receives once SIGINT, SIGTERM, or
// SIGHUP arrives, or once ctx is done, whichever happens first. The
// channel is closed rather than repeatedly signaled, so a single receive
// anywhere in the caller is enough to learn shutdown was requested.
func ShutdownCh(ctx context.Context) <-chan struct{} {
	sigCh := make(chan os.Signal, 1)
	gosignal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
	}()
	return done
}
