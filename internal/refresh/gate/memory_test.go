package gate

import (
	"context"
	"testing"
	"time"

	"github.com/railzwaylabs/pricecalc/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGateCooldownWindow(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFake(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	g := NewMemory(clk)

	remaining, err := g.Remaining(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	remaining, armed, err := g.Arm(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, armed)
	assert.Equal(t, time.Minute, remaining)

	clk.Advance(20 * time.Second)
	remaining, armed, err = g.Arm(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, armed)
	assert.Equal(t, 40*time.Second, remaining)

	clk.Advance(39 * time.Second)
	_, armed, err = g.Arm(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, armed, "still inside the window one second before expiry")

	clk.Advance(time.Second)
	remaining, err = g.Remaining(ctx)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, armed, err = g.Arm(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, armed)
}
