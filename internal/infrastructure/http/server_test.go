package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ShutdownRunsHooksInReverse(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), "0", time.Second, zerolog.Nop())

	var order []string
	srv.OnShutdown("store", func(context.Context) error { order = append(order, "store"); return nil })
	srv.OnShutdown("cache", func(context.Context) error { order = append(order, "cache"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, srv.serve(ctx))
	assert.Equal(t, []string{"cache", "store"}, order)
}

func TestServer_ShutdownReportsHookErrors(t *testing.T) {
	srv := NewServer(http.NotFoundHandler(), "0", time.Second, zerolog.Nop())
	boom := errors.New("boom")
	srv.OnShutdown("store", func(context.Context) error { return boom })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, srv.serve(ctx), boom)
}

func TestNewOutboundClient_StopsAfterMaxRedirects(t *testing.T) {
	client := NewOutboundClient(5 * time.Second)
	assert.Equal(t, 5*time.Second, client.Timeout)

	via := make([]*http.Request, maxRedirects)
	assert.ErrorIs(t, client.CheckRedirect(nil, via), http.ErrUseLastResponse)
	assert.NoError(t, client.CheckRedirect(nil, via[:1]))
}
