package servers

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingClosable struct {
	closed atomic.Int32
}

func (c *countingClosable) Close() { c.closed.Add(1) }

func TestBaseServer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	closable := &countingClosable{}

	name, server := BuildBaseServer(closable)
	assert.Equal(t, "base-server", name)

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	require.NoError(t, server.Stop(ctx))
	require.NoError(t, server.Stop(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("base server did not stop")
	}

	assert.Equal(t, int32(1), closable.closed.Load())
}

func TestHttpServer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	name, server := BuildHttpServer("rest-server", NewServer("127.0.0.1:0", http.NotFoundHandler()))
	assert.Equal(t, "rest-server", name)

	done := make(chan error, 1)
	go func() { done <- server.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, server.Stop(ctx))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("http server did not stop")
	}
}

func TestHttpServer_ListenFailure(t *testing.T) {
	t.Parallel()

	_, server := BuildHttpServer("rest-server", NewServer("256.0.0.1:bad", http.NotFoundHandler()))

	err := server.Run(context.Background())
	require.ErrorIs(t, err, ErrStart)
	assert.Contains(t, err.Error(), "server rest-server failed to start")
}
