package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"rocketcart/internal/backends/memory"
	"rocketcart/internal/cart"
	"rocketcart/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() {
		_ = l.Close()
	}()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRunServerInterruptible(t *testing.T) {
	client := catalog.NewClient("http://127.0.0.1:1", time.Second, 0)
	store, err := cart.Open(context.Background(), memory.NewKV(), client, client)
	require.NoError(t, err)

	port := freePort(t)
	stop, done := RunServerInterruptible(port, store, nil)

	url := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	assert.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	stop <- struct{}{}
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(20 * time.Second):
		t.Fatal("server did not stop")
	}
}
