package table

import "time"

// Options tunes the coordinator. Non-positive sizes and durations fall back
// to DefaultOptions; retry counts are clamped.
type Options struct {
	PageSize        int
	SearchDebounce  time.Duration
	FetchRetries    int
	MutationRetries int
	RetryBackoff    time.Duration
	FetchTimeout    time.Duration
	CacheSize       int
}

// DefaultOptions returns ten rows per page and a 120ms search debounce.
func DefaultOptions() Options {
	return Options{
		PageSize:        10,
		SearchDebounce:  120 * time.Millisecond,
		FetchRetries:    2,
		MutationRetries: 1,
		RetryBackoff:    50 * time.Millisecond,
		FetchTimeout:    5 * time.Second,
		CacheSize:       256,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PageSize < 1 {
		o.PageSize = d.PageSize
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = d.SearchDebounce
	}
	if o.FetchRetries < 0 {
		o.FetchRetries = 0
	}
	// mutations are retried at most once
	o.MutationRetries = min(max(o.MutationRetries, 0), 1)
	if o.RetryBackoff < 0 {
		o.RetryBackoff = 0
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = d.FetchTimeout
	}
	if o.CacheSize < 1 {
		o.CacheSize = d.CacheSize
	}
	return o
}
