package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/profile"
)

type AudienceConfig struct {
	MinFollowers  int
	MinEngagement float64
}

type audienceFilter struct {
	enabled bool
	reason  string
	config  AudienceConfig
	logger  *zap.Logger
}

// NewAudience creates a filter that drops influencers below the follower or
// engagement minimums. Zero minimums disable the filter.
func NewAudience(cfg AudienceConfig, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := &audienceFilter{enabled: true, config: cfg, logger: logger}
	if cfg.MinFollowers == 0 && cfg.MinEngagement == 0 {
		f.Disable("no audience minimums configured")
	}
	return f
}

func (f *audienceFilter) Name() string { return "audience" }

func (f *audienceFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *audienceFilter) IsEnabled() bool { return f.enabled }

func (f *audienceFilter) Validate() error {
	if f.config.MinFollowers < 0 {
		return fmt.Errorf("minimum followers must not be negative: %d", f.config.MinFollowers)
	}
	if f.config.MinEngagement < 0 {
		return fmt.Errorf("minimum engagement must not be negative: %v", f.config.MinEngagement)
	}
	return nil
}

func (f *audienceFilter) Apply(_ context.Context, v *profile.Influencers) (*profile.Influencers, Step, error) {
	initial := v.Len()

	dropped := v.Retain(func(i *profile.Influencer) bool {
		return i.Followers >= f.config.MinFollowers && i.Engagement >= f.config.MinEngagement
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding influencers with insufficient audience",
			zap.Int("min_followers", f.config.MinFollowers),
			zap.Float64("min_engagement", f.config.MinEngagement),
			zap.Strings("excluded_influencers", dropped),
			zap.Int("influencers_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *audienceFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.enabled,
		Reason:  f.reason,
		Details: map[string]string{
			"min_followers":  strconv.Itoa(f.config.MinFollowers),
			"min_engagement": strconv.FormatFloat(f.config.MinEngagement, 'f', -1, 64),
		},
	}
}
