package macro

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/danielpatrickdp/entry-scout/go-controller/internal/state"
)

// #region cache

// Cache memoizes a Provider per resolved country code for the life of the
// process. Concurrent misses for the same code share one fetch.
type Cache struct {
	inner Provider

	mu      sync.Mutex
	entries map[string]state.MacroIndicators
	group   singleflight.Group
}

// NewCache wraps inner.
func NewCache(inner Provider) *Cache {
	return &Cache{inner: inner, entries: make(map[string]state.MacroIndicators)}
}

// Macro returns the cached indicators for country, fetching on a miss.
// The shared fetch is detached from the caller's cancellation; a caller
// whose ctx ends stops waiting and gets zero indicators, while other
// waiters still receive the fetched result.
func (c *Cache) Macro(ctx context.Context, country string) state.MacroIndicators {
	code := ResolveCountryCode(country)

	c.mu.Lock()
	if v, ok := c.entries[code]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return state.MacroIndicators{}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(code, func() (any, error) {
		c.mu.Lock()
		if cached, ok := c.entries[code]; ok {
			c.mu.Unlock()
			return cached, nil
		}
		c.mu.Unlock()

		m := c.inner.Macro(fetchCtx, country)
		c.mu.Lock()
		c.entries[code] = m
		c.mu.Unlock()
		return m, nil
	})

	select {
	case res := <-ch:
		return res.Val.(state.MacroIndicators)
	case <-ctx.Done():
		return state.MacroIndicators{}
	}
}

// Len reports the number of cached countries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// #endregion cache

// #region disabled

// Disabled reports every indicator as unknown (zero).
type Disabled struct{}

func (Disabled) Macro(context.Context, string) state.MacroIndicators { return state.MacroIndicators{} }

// #endregion disabled
