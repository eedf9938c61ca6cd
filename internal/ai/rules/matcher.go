package rules

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/logger"
	"github.com/spigell/collabmatch/internal/profile"
	"github.com/spigell/collabmatch/internal/utils"
)

// Matcher exposes the rule-based score through ai.Matcher, optionally
// pausing before each answer to emulate a remote call.
type Matcher struct {
	opts   Options
	delay  time.Duration
	logger *zap.Logger
}

func NewMatcher(opts Options, delay time.Duration, log *zap.Logger) *Matcher {
	return &Matcher{
		opts:   opts,
		delay:  delay,
		logger: logger.WithFields(log),
	}
}

func (m *Matcher) Evaluate(ctx context.Context, influencer *profile.Influencer, business *profile.Business) (*ai.MatchResult, error) {
	if influencer == nil {
		return nil, errors.New("influencer is required")
	}
	if business == nil {
		return nil, errors.New("business is required")
	}

	if err := utils.WaitFor(ctx, m.delay); err != nil {
		return nil, err
	}

	result := m.opts.Score(influencer, business)

	m.logger.Debug("rule-based score computed",
		append(logger.PairFields(influencer.ID, business.ID),
			zap.Int("match_score", result.MatchScore),
			zap.Int("criteria_met", len(result.Reasoning)),
		)...,
	)

	return result, nil
}
