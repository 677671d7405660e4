package feed

import (
	"math"
	"sync/atomic"
	"time"

	"hermes_go/internal/domain"
)

// Cell is the shared price slot between the stream worker and the
// controller/engine. Contract: exactly one writer (the worker of the
// currently active symbol) and any number of readers. It is a plain slot,
// not a queue; only the most recent value is observable.
//
// The readiness flag transitions false->true once per worker lifetime, on
// the first published sample. The worker never resets it; the controller
// must call ResetReady before starting a new worker so stale readiness from
// a previous symbol cannot be misread as the new symbol's first tick.
type Cell struct {
	bits  atomic.Uint64 // float64 price as IEEE-754 bits
	at    atomic.Int64  // unix nanos of last write
	ready atomic.Bool
}

// NewCell returns an empty, not-ready cell.
func NewCell() *Cell {
	return &Cell{}
}

// Write stores a new price sample. Worker-side only.
func (c *Cell) Write(value float64) {
	c.bits.Store(math.Float64bits(value))
	c.at.Store(time.Now().UnixNano())
}

// Read returns the latest sample non-destructively. A zero-value sample with
// IsReady() == false means no worker has published yet.
func (c *Cell) Read() domain.PriceSample {
	bits := c.bits.Load()
	nanos := c.at.Load()
	s := domain.PriceSample{Value: math.Float64frombits(bits)}
	if nanos != 0 {
		s.ObservedAt = time.Unix(0, nanos)
	}
	return s
}

// Publish writes a sample and raises the readiness flag. This is the
// worker's single entry point so write and signal cannot be reordered by
// the caller.
func (c *Cell) Publish(value float64) {
	c.Write(value)
	c.MarkReady()
}

// MarkReady signals that at least one sample has been published.
func (c *Cell) MarkReady() {
	c.ready.Store(true)
}

// IsReady reports whether a first sample has arrived since the last reset.
func (c *Cell) IsReady() bool {
	return c.ready.Load()
}

// ResetReady clears the readiness flag. Controller-side only, and only
// while no worker is running.
func (c *Cell) ResetReady() {
	c.ready.Store(false)
}
