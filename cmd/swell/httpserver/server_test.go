// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestStartAPIServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	deadlines := make(chan bool, 2)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Context().Deadline()
		deadlines <- ok
		_, _ = io.WriteString(w, "ok")
	})

	url, err := StartAPIServer(groupCtx, group, "localhost:0", handler, time.Second)
	require.NoError(t, err)

	for _, path := range []string{"ledger", "subscriptions/events"} {
		res, err := http.Get(url + path)
		require.NoError(t, err)
		body, err := io.ReadAll(res.Body)
		res.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, "ok", string(body))
	}
	assert.True(t, <-deadlines)
	assert.False(t, <-deadlines)

	cancel()
	assert.NoError(t, group.Wait())

	_, err = http.Get(url + "ledger")
	assert.Error(t, err)
}

func TestStartMetricsServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	url, err := StartMetricsServer(groupCtx, group, "localhost:0")
	require.NoError(t, err)
	assert.Contains(t, url, "/metrics")

	cancel()
	assert.NoError(t, group.Wait())
}
