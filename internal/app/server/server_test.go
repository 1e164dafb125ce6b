package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func waitReady(t *testing.T, addr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		res, err := http.Get("http://" + addr + "/")
		if err != nil {
			return false
		}
		_ = res.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

// TestServe_ShutdownRunsCleanups はコンテキストのキャンセルでサーバーが停止し、クリーンアップが順に呼ばれることを検証します。
func TestServe_ShutdownRunsCleanups(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := &http.Server{Addr: addr, Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})}

	var order []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, srv,
			func(context.Context) error { order = append(order, "first"); return nil },
			func(context.Context) error { order = append(order, "second"); return nil },
		)
	}()

	waitReady(t, addr)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, []string{"first", "second"}, order)
}

// TestServe_CleanupErrorIsReturned はクリーンアップのエラーが呼び出し元に返ることを検証します。
func TestServe_CleanupErrorIsReturned(t *testing.T) {
	t.Parallel()

	addr := freeAddr(t)
	srv := &http.Server{Addr: addr, Handler: http.NotFoundHandler()}
	wantErr := errors.New("close failed")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, srv, func(context.Context) error { return wantErr })
	}()

	waitReady(t, addr)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, wantErr)
}

// TestServe_ListenError はリッスンに失敗した場合にエラーを返すことを検証します。
func TestServe_ListenError(t *testing.T) {
	t.Parallel()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv := &http.Server{Addr: l.Addr().String(), Handler: http.NotFoundHandler()}
	err = serve(context.Background(), srv)

	assert.Error(t, err)
}
