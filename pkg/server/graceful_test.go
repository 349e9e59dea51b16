package server

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGracefulShutdown(t *testing.T) {
	gs := NewGracefulServer("127.0.0.1:0", http.NewServeMux(),
		WithShutdownTimeout(time.Second))

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Start() }()
	time.Sleep(50 * time.Millisecond)

	assert.False(t, gs.IsShuttingDown())
	require.NoError(t, gs.Shutdown())
	assert.True(t, gs.IsShuttingDown())

	select {
	case err := <-errCh:
		assert.NoError(t, err, "ErrServerClosed is swallowed")
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}

	// Second shutdown is a no-op.
	assert.NoError(t, gs.Shutdown())
}
