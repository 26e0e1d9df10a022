package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parrot-platform/parrot/internal/config"
)

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after cancel")
	}
}

func TestServer_Addr(t *testing.T) {
	srv := New(config.ServerConfig{Host: "0.0.0.0", Port: 5000}, http.NotFoundHandler())
	assert.Equal(t, "0.0.0.0:5000", srv.Addr())
}
