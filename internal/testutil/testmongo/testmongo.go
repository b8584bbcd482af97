//go:build testutil || e2e

package testmongo

import (
	"context"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

type Handle struct {
	URI    string
	cancel func()
	stop   func(context.Context) error
}

func (h *Handle) Close() {
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// Start runs a throwaway MongoDB container and returns its connection URI.
func Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	container, err := mongodb.RunContainer(ctx, tc.WithImage("mongo:7"))
	if err != nil {
		cancel()
		return nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		cancel()
		return nil, err
	}

	return &Handle{
		URI:    uri,
		cancel: cancel,
		stop:   container.Terminate,
	}, nil
}
