package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServerApp_RunReleasesResources(t *testing.T) {
	t.Parallel()

	poolClosed := false
	cacheClosed := false

	app := &ServerApp{
		ListenAddr: "127.0.0.1:0",
		Handler:    http.NewServeMux(),
		closeFns: []func(){
			func() { poolClosed = true },
			func() { cacheClosed = true },
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := app.Run(ctx)
	require.ErrorIs(t, err, http.ErrServerClosed)

	require.True(t, poolClosed, "db pool should be closed when the server stops")
	require.True(t, cacheClosed, "redis client should be closed when the server stops")
}
