package mtls

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestNewSourceWithoutAgent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := NewSource(ctx, Config{
		Enabled:    true,
		SocketPath: "unix:///tmp/no-such-spire-agent.sock",
	}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
