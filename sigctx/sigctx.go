// Package sigctx provides a context that is canceled on SIGINT or SIGTERM.
package sigctx

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// New returns a context that is canceled the first time the process receives
// SIGINT or SIGTERM. A second signal kills the process as usual.
func New() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
		signal.Stop(sigs)
	}()
	return ctx
}
