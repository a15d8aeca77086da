// Package cache provides a generic Cache interface with in-memory and Redis
// implementations.
//
// TTL semantics for Set are shared by both backends: a positive duration
// expires the entry, zero uses the cache default and a negative duration
// never expires.
//
// [Memory] is an LRU map with TTL expiry and an optional background janitor.
// loom keeps per-session page maps and parsed markup in it:
//
//	pages := cache.NewMemory[*component.Page](
//	    cache.WithMaxEntries(settings.MaxPagesPerMap),
//	    cache.WithDefaultTTL(-1),
//	    cache.WithCleanupInterval(0),
//	)
//
// [Redis] stores values through a [Marshaler]. [JSONMarshaler] is the default;
// [MsgpackMarshaler] suits binary payloads such as buffered responses.
//
// [Take] reads and removes an entry in one step (GETDEL on Redis), which is
// what serve-once values need. [GetOrSet] computes a missing value once per
// key even when many goroutines miss concurrently:
//
//	m, err := cache.GetOrSet(ctx, c, "Home||en", func(ctx context.Context) (*markup.Markup, time.Duration, error) {
//	    m, err := parse(ctx)
//	    return m, -1, err
//	})
//
// Misses are reported as [ErrNotFound].
package cache
