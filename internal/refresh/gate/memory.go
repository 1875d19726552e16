package gate

import (
	"context"
	"sync"
	"time"

	"github.com/railzwaylabs/pricecalc/internal/clock"
)

type memoryState int

const (
	stateIdle memoryState = iota
	stateCooling
)

// MemoryGate is the single-instance gate: Idle, then Cooling until
// expiresAt, then Idle again. Expiry is driven by the clock alone.
type MemoryGate struct {
	mu        sync.Mutex
	clock     clock.Clock
	state     memoryState
	expiresAt time.Time
}

func NewMemory(clk clock.Clock) *MemoryGate {
	return &MemoryGate{clock: clk}
}

func (g *MemoryGate) Arm(ctx context.Context, window time.Duration) (time.Duration, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now(ctx)
	g.expire(now)
	if g.state == stateCooling {
		return g.expiresAt.Sub(now), false, nil
	}
	g.state = stateCooling
	g.expiresAt = now.Add(window)
	return window, true, nil
}

func (g *MemoryGate) Remaining(ctx context.Context) (time.Duration, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now(ctx)
	g.expire(now)
	if g.state == stateIdle {
		return 0, nil
	}
	return g.expiresAt.Sub(now), nil
}

func (g *MemoryGate) expire(now time.Time) {
	if g.state == stateCooling && !now.Before(g.expiresAt) {
		g.state = stateIdle
		g.expiresAt = time.Time{}
	}
}
