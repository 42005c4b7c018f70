package fetcher

import (
	"context"

	"golang.org/x/time/rate"
)

type throttled struct {
	next    Fetcher
	limiter *rate.Limiter
}

// Throttle wraps f so that every request first waits on limiter.
// A nil limiter returns f unchanged.
func Throttle(f Fetcher, limiter *rate.Limiter) Fetcher {
	if limiter == nil {
		return f
	}
	return &throttled{next: f, limiter: limiter}
}

func (t *throttled) Text(ctx context.Context, url string) (Page, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return Page{}, &Error{URL: url, Err: err}
	}
	return t.next.Text(ctx, url)
}

func (t *throttled) JSON(ctx context.Context, url string, v any) (int, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return 0, &Error{URL: url, Err: err}
	}
	return t.next.JSON(ctx, url, v)
}
