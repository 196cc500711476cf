package testutil

import (
	"fmt"
	"time"
)

// FixedClock always reports the same time.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// SequentialIDGenerator produces "id-1", "id-2", ... for deterministic tests.
type SequentialIDGenerator struct {
	n int
}

func (g *SequentialIDGenerator) New() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}
