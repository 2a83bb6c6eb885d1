package query

import "time"

// cacheTTLs groups the read-path cache lifetimes.
type cacheTTLs struct {
	application time.Duration
	stats       time.Duration
}

func defaultCacheTTLs() cacheTTLs {
	return cacheTTLs{
		application: 10 * time.Minute,
		stats:       5 * time.Minute,
	}
}
