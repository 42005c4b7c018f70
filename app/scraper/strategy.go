package scraper

import "context"

// strategy is one way of producing a stage result. ok reports whether the
// result is usable; a false ok moves the chain to the next strategy.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, bool)
}

// runChain tries strategies in order and returns the first usable result and
// the name of the strategy that produced it. An empty name means none did.
func runChain[T any](ctx context.Context, chain ...strategy[T]) (T, string) {
	var zero T
	for _, s := range chain {
		if ctx.Err() != nil {
			return zero, ""
		}
		if v, ok := s.run(ctx); ok {
			return v, s.name
		}
	}
	return zero, ""
}
