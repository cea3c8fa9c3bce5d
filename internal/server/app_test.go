package server

import (
	"testing"

	"reward-admin/internal/config"
	"reward-admin/internal/notify"
	"reward-admin/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewNotifierWithoutSMTP(t *testing.T) {
	store := notify.NewStore(testutil.NewDB(t))

	n, queue := newNotifier(config.SMTPConfig{}, store, zap.NewNop())
	assert.Nil(t, queue)
	require.Len(t, n, 1)
	for _, each := range n {
		assert.NotNil(t, each)
	}
}

func TestNewNotifierQueuesMail(t *testing.T) {
	store := notify.NewStore(testutil.NewDB(t))
	cfg := config.SMTPConfig{Host: "smtp.example.test", Port: 587, From: "noreply@example.test"}

	n, queue := newNotifier(cfg, store, zap.NewNop())
	require.NotNil(t, queue)
	t.Cleanup(queue.Close)
	require.Len(t, n, 2)
	assert.Same(t, queue, n[1])
}
