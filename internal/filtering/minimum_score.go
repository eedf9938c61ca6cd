package filtering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/profile"
	"github.com/spigell/collabmatch/internal/ranking"
)

type minimumScoreFilter struct {
	enabled     bool
	reason      string
	config      *MinimumScoreConfig
	deps        *MinimumScoreDeps
	assessments map[string]*ai.MatchResult
}

type MinimumScoreConfig struct {
	Enabled        bool
	MinimumScore   int
	AppendExcluded bool
}

type MinimumScoreDeps struct {
	Logger      *zap.Logger
	Ranker      *ranking.Ranker
	Business    *profile.Business
	ExcludeFile string
}

// NewMinimumScore creates the filter that scores every influencer against the
// business and drops those below the configured score.
func NewMinimumScore(cfg *MinimumScoreConfig, deps *MinimumScoreDeps) Filter {
	if cfg == nil {
		cfg = &MinimumScoreConfig{}
	}

	return &minimumScoreFilter{
		enabled:     cfg.Enabled,
		config:      cfg,
		deps:        deps,
		assessments: make(map[string]*ai.MatchResult),
	}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *minimumScoreFilter) IsEnabled() bool { return f.enabled }

func (f *minimumScoreFilter) Validate() error {
	if f.deps == nil || f.deps.Ranker == nil {
		return fmt.Errorf("deps are not initialized: filter is not usable")
	}
	if f.deps.Business == nil {
		return fmt.Errorf("business is required to score influencers")
	}
	if f.config.MinimumScore < 0 || f.config.MinimumScore > 100 {
		return fmt.Errorf("minimum score must be within 0..100, got %d", f.config.MinimumScore)
	}
	if f.config.AppendExcluded && strings.TrimSpace(f.deps.ExcludeFile) == "" {
		return fmt.Errorf("exclude file is required to append excluded influencers")
	}
	return nil
}

func (f *minimumScoreFilter) Apply(ctx context.Context, v *profile.Influencers) (*profile.Influencers, Step, error) {
	initial := v.Len()
	log := f.logger()

	ranked, err := f.deps.Ranker.Influencers(ctx, f.deps.Business, v.Items)
	if err != nil {
		return v, Step{}, fmt.Errorf("scoring influencers: %w", err)
	}

	rejected := &profile.Influencers{}
	for _, entry := range ranked {
		f.assessments[entry.Influencer.ID] = entry.Result
		if entry.Result.MatchScore >= f.config.MinimumScore {
			continue
		}

		log.Info("influencer rejected by score",
			zap.String("influencer_id", entry.Influencer.ID),
			zap.Int("match_score", entry.Result.MatchScore),
			zap.Int("minimum_score", f.config.MinimumScore),
		)
		rejected.Items = append(rejected.Items, entry.Influencer)
	}

	v.Exclude(profile.InfluencerIDField, rejected.IDs())

	if f.config.AppendExcluded && rejected.Len() > 0 {
		if err := f.appendToExcludeFile(rejected); err != nil {
			log.Warn("failed to append influencers to exclude file",
				zap.String("path", f.deps.ExcludeFile),
				zap.Error(err),
			)
		}
	}

	left := v.Len()
	return v, Step{Initial: initial, Dropped: initial - left, Left: left}, nil
}

func (f *minimumScoreFilter) appendToExcludeFile(rejected *profile.Influencers) error {
	excluded, err := profile.GetExcludedFromFile(f.deps.ExcludeFile)
	if err != nil {
		return err
	}

	reason := fmt.Sprintf("match score below %d for business %s", f.config.MinimumScore, f.deps.Business.ID)
	excluded.Append(rejected.ToExcluded(profile.ExcludeActorScorer, reason))

	return excluded.ToFile(f.deps.ExcludeFile)
}

func (f *minimumScoreFilter) logger() *zap.Logger {
	if f.deps == nil || f.deps.Logger == nil {
		return zap.NewNop()
	}
	return f.deps.Logger
}

// Assessments returns the match results computed during the last Apply.
func (f *minimumScoreFilter) Assessments() map[string]*ai.MatchResult {
	return f.assessments
}

func (f *minimumScoreFilter) Status() Status {
	details := map[string]string{
		"minimum_score": strconv.Itoa(f.config.MinimumScore),
	}
	if f.deps != nil && f.deps.Business != nil {
		details["business"] = f.deps.Business.ID
	}
	if f.config.AppendExcluded {
		details["append_excluded"] = "true"
	}

	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}
