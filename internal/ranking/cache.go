package ranking

import (
	"context"
	"sync"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/profile"
)

type pairKey struct {
	influencer string
	business   string
}

// Cached memoizes successful evaluations of the wrapped matcher per
// influencer/business id pair. Failed evaluations are not stored. Every call
// returns its own copy of the stored result.
type Cached struct {
	matcher ai.Matcher

	mu      sync.Mutex
	results map[pairKey]*ai.MatchResult
}

func NewCached(matcher ai.Matcher) *Cached {
	return &Cached{
		matcher: matcher,
		results: make(map[pairKey]*ai.MatchResult),
	}
}

func (c *Cached) Evaluate(ctx context.Context, influencer *profile.Influencer, business *profile.Business) (*ai.MatchResult, error) {
	if influencer == nil || business == nil {
		return c.matcher.Evaluate(ctx, influencer, business)
	}

	key := pairKey{influencer: influencer.ID, business: business.ID}

	c.mu.Lock()
	cached, ok := c.results[key]
	c.mu.Unlock()
	if ok {
		return cached.Clone(), nil
	}

	result, err := c.matcher.Evaluate(ctx, influencer, business)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.results[key] = result.Clone()
	c.mu.Unlock()

	return result, nil
}

// Len returns the number of memoized pairs.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}
