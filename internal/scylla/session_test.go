package scylla

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biilabs/tangle-index/internal/config"
	"github.com/biilabs/tangle-index/internal/storeerr"
)

// TestConnect_UnreachableHost_ReturnsConnectFail exercises the error path
// of Connect without needing a live cluster: an address nothing listens on
// fails fast, letting us assert the ConnectFail taxonomy and that no
// *Session leaks out on failure (spec.md §7, §5 resource release).
func TestConnect_UnreachableHost_ReturnsConnectFail(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := config.New(
		config.WithHosts("127.0.0.1:1"), // nothing listens on port 1
		config.WithKeyspace("tangle_index_test"),
	)
	require.NoError(t, err)

	s, err := Connect(ctx, cfg, nil)
	require.Error(t, err)
	assert.Nil(t, s)

	kind, ok := storeerr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, storeerr.KindConnectFail, kind)
}

func TestIsRetryableError_ClassifiesTransientVsPermanent(t *testing.T) {
	assert.True(t, isRetryableError(gocql.ErrNoConnections))
	assert.True(t, isRetryableError(gocql.ErrConnectionClosed))
	assert.True(t, isRetryableError(gocql.ErrTimeoutNoResponse))

	assert.False(t, isRetryableError(nil))
	assert.False(t, isRetryableError(assertErr("some permanent failure")))
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
