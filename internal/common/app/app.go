package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/G-Research/rainbow/internal/common/rainbowcontext"
)

// CreateContextWithShutdown returns a context that will report done when a SIGINT or SIGTERM is received,
// or when the returned cancel function is called.
func CreateContextWithShutdown(parent *rainbowcontext.Context) (*rainbowcontext.Context, context.CancelFunc) {
	ctx, cancel := rainbowcontext.WithCancel(parent)
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(c)
		select {
		case sig := <-c:
			ctx.Log.Warnf("received %s, stopping", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
