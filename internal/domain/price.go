package domain

import "time"

// PriceSample is the latest trade price published by the stream worker.
// Only the most recent value is retained; readiness is signalled separately
// so an unset cell is never confused with a zero price.
type PriceSample struct {
	Value      float64
	ObservedAt time.Time
}

// Valid reports whether the sample carries a usable price.
func (s PriceSample) Valid() bool {
	return s.Value > 0
}
