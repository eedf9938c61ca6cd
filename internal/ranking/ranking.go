// Package ranking evaluates many influencer/business pairs concurrently and
// orders them by match score.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/logger"
	"github.com/spigell/collabmatch/internal/profile"
)

const defaultWorkers = 4

var (
	ErrNilInfluencer = errors.New("influencer is nil")
	ErrNilBusiness   = errors.New("business is nil")
)

type Ranked struct {
	Influencer *profile.Influencer `json:"influencer"`
	Business   *profile.Business   `json:"business"`
	Result     *ai.MatchResult     `json:"result"`
}

type Ranker struct {
	matcher ai.Matcher
	workers int
	logger  *zap.Logger
}

func New(matcher ai.Matcher, workers int, log *zap.Logger) *Ranker {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Ranker{
		matcher: matcher,
		workers: workers,
		logger:  logger.WithFields(log),
	}
}

// Influencers scores every influencer against the business, best first.
func (r *Ranker) Influencers(ctx context.Context, business *profile.Business, influencers []*profile.Influencer) ([]*Ranked, error) {
	if business == nil {
		return nil, fmt.Errorf("rank influencers: %w", ErrNilBusiness)
	}

	pairs := make([]*Ranked, 0, len(influencers))
	for idx, i := range influencers {
		if i == nil {
			return nil, fmt.Errorf("rank influencers for business %s: entry %d: %w", business.ID, idx, ErrNilInfluencer)
		}
		pairs = append(pairs, &Ranked{Influencer: i, Business: business})
	}
	return r.rank(ctx, pairs)
}

// Businesses scores every business against the influencer, best first.
func (r *Ranker) Businesses(ctx context.Context, influencer *profile.Influencer, businesses []*profile.Business) ([]*Ranked, error) {
	if influencer == nil {
		return nil, fmt.Errorf("rank businesses: %w", ErrNilInfluencer)
	}

	pairs := make([]*Ranked, 0, len(businesses))
	for idx, b := range businesses {
		if b == nil {
			return nil, fmt.Errorf("rank businesses for influencer %s: entry %d: %w", influencer.ID, idx, ErrNilBusiness)
		}
		pairs = append(pairs, &Ranked{Influencer: influencer, Business: b})
	}
	return r.rank(ctx, pairs)
}

func (r *Ranker) rank(ctx context.Context, pairs []*Ranked) ([]*Ranked, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, pair := range pairs {
		g.Go(func() error {
			result, err := r.matcher.Evaluate(ctx, pair.Influencer, pair.Business)
			if err != nil {
				return fmt.Errorf("evaluate influencer %s with business %s: %w", pair.Influencer.ID, pair.Business.ID, err)
			}
			pair.Result = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	Sort(pairs)

	r.logger.Debug("ranking completed",
		zap.Int("pairs", len(pairs)),
		zap.Int("workers", r.workers),
	)

	return pairs, nil
}

// Sort orders ranked pairs by score descending, keeping input order on ties.
func Sort(ranked []*Ranked) {
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Result.MatchScore > ranked[b].Result.MatchScore
	})
}

// Top returns at most n entries. n <= 0 returns everything.
func Top(ranked []*Ranked, n int) []*Ranked {
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
