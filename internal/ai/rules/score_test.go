package rules

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/profile"
)

func perfectPair() (*profile.Influencer, *profile.Business) {
	influencer := &profile.Influencer{
		ID:           "i1",
		Category:     "Sustainable Fashion",
		Tags:         []string{"fashion", "eco"},
		Location:     "Mumbai",
		Followers:    250000,
		Engagement:   4.2,
		ContentTypes: []string{"Educational Reels", "Hauls"},
		Pricing:      profile.Pricing{SponsoredPost: 30000, ReelPost: 20000},
	}
	business := &profile.Business{
		ID:             "b1",
		Category:       "Sustainable Fashion",
		TargetAudience: []string{"Fashion enthusiasts"},
		Location:       "Mumbai",
		Preferences: profile.Preferences{
			InfluencerSize: "100k-500k",
			EngagementRate: 3.5,
			ContentStyle:   []string{"educational"},
		},
		Budget: profile.Budget{Min: 15000, Max: 50000},
	}
	return influencer, business
}

// mismatchedPair fails every criterion.
func mismatchedPair() (*profile.Influencer, *profile.Business) {
	influencer := &profile.Influencer{
		Category:     "Gaming",
		Tags:         []string{"esports"},
		Location:     "Pune",
		Followers:    5000,
		Engagement:   1.0,
		ContentTypes: []string{"Streams"},
		Pricing:      profile.Pricing{SponsoredPost: 900000, ReelPost: 900000},
	}
	business := &profile.Business{
		Category:       "Food & Cooking",
		TargetAudience: []string{"Home cooks"},
		Location:       "Delhi",
		Preferences: profile.Preferences{
			InfluencerSize: "100k-500k",
			EngagementRate: 4.0,
			ContentStyle:   []string{"Authentic"},
		},
		Budget: profile.Budget{Min: 20000, Max: 60000},
	}
	return influencer, business
}

func TestScorePerfectMatch(t *testing.T) {
	t.Parallel()

	influencer, business := perfectPair()
	result := Score(influencer, business)

	if result.MatchScore != 100 {
		t.Fatalf("expected score 100, got %d (%v)", result.MatchScore, result.Reasoning)
	}

	expected := []string{ReasonCategory, ReasonLocation, ReasonSize, ReasonEngagement, ReasonContent, ReasonBudget}
	if !reflect.DeepEqual(result.Reasoning, expected) {
		t.Fatalf("unexpected reasoning order: %v", result.Reasoning)
	}

	if !reflect.DeepEqual(result.SuggestedCollaborations, HighTierSuggestions) {
		t.Fatalf("expected high tier suggestions, got %v", result.SuggestedCollaborations)
	}
}

func TestScoreThematicAlignmentOnly(t *testing.T) {
	t.Parallel()

	influencer, business := mismatchedPair()
	influencer.Tags = []string{"COOKS"}

	result := Score(influencer, business)

	if result.MatchScore != 20 {
		t.Fatalf("expected score 20, got %d (%v)", result.MatchScore, result.Reasoning)
	}
	if len(result.Reasoning) != 1 || result.Reasoning[0] != ReasonThematic {
		t.Fatalf("unexpected reasoning: %v", result.Reasoning)
	}
	if !reflect.DeepEqual(result.SuggestedCollaborations, LowTierSuggestions) {
		t.Fatalf("expected low tier suggestions, got %v", result.SuggestedCollaborations)
	}
}

func TestScoreNoCriteria(t *testing.T) {
	t.Parallel()

	influencer, business := mismatchedPair()
	result := Score(influencer, business)

	if result.MatchScore != 0 {
		t.Fatalf("expected score 0, got %d (%v)", result.MatchScore, result.Reasoning)
	}
	if len(result.Reasoning) != 0 {
		t.Fatalf("expected no reasoning, got %v", result.Reasoning)
	}
	if !reflect.DeepEqual(result.SuggestedCollaborations, LowTierSuggestions) {
		t.Fatalf("expected low tier suggestions, got %v", result.SuggestedCollaborations)
	}
}

func TestScoreMalformedSizeRange(t *testing.T) {
	t.Parallel()

	for _, size := range []string{"500k+", "", "lots", "100k", "abc-def", "500k-100k"} {
		t.Run(size, func(t *testing.T) {
			t.Parallel()

			influencer, business := perfectPair()
			influencer.Followers = 600000
			business.Preferences.InfluencerSize = size

			result := Score(influencer, business)

			if result.MatchScore != 85 {
				t.Fatalf("expected only the size criterion to fail (85), got %d (%v)", result.MatchScore, result.Reasoning)
			}
			for _, r := range result.Reasoning {
				if r == ReasonSize {
					t.Fatalf("size criterion must not be satisfied for %q", size)
				}
			}
		})
	}
}

func TestScoreOpenEndedSizesOption(t *testing.T) {
	t.Parallel()

	influencer, business := perfectPair()
	influencer.Followers = 600000
	business.Preferences.InfluencerSize = "500k+"

	if got := Score(influencer, business).MatchScore; got != 85 {
		t.Fatalf("default scoring should ignore open-ended range, got %d", got)
	}

	if got := (Options{OpenEndedSizes: true}).Score(influencer, business).MatchScore; got != 100 {
		t.Fatalf("open-ended option should satisfy size, got %d", got)
	}

	influencer.Followers = 499999
	if got := (Options{OpenEndedSizes: true}).Score(influencer, business).MatchScore; got != 85 {
		t.Fatalf("followers below open-ended bound must not match, got %d", got)
	}
}

func TestScoreCategoryWinsOverThematic(t *testing.T) {
	t.Parallel()

	influencer, business := mismatchedPair()
	influencer.Category = "Food & Cooking Vlogs"
	influencer.Tags = []string{"cooks"}

	result := Score(influencer, business)

	if result.MatchScore != 30 || len(result.Reasoning) != 1 || result.Reasoning[0] != ReasonCategory {
		t.Fatalf("expected only category alignment, got %d %v", result.MatchScore, result.Reasoning)
	}
}

func TestScoreThematicDirection(t *testing.T) {
	t.Parallel()

	influencer, business := mismatchedPair()
	// audience entry is contained in the tag, not the other way around
	influencer.Tags = []string{"home cooks and bakers"}

	if got := Score(influencer, business).MatchScore; got != 0 {
		t.Fatalf("expected tag to be the needle only, got %d", got)
	}
}

func TestScoreLocationIsCaseSensitive(t *testing.T) {
	t.Parallel()

	influencer, business := mismatchedPair()
	influencer.Location = "delhi"

	if got := Score(influencer, business).MatchScore; got != 0 {
		t.Fatalf("expected case-sensitive location comparison, got %d", got)
	}

	influencer.Location = "Delhi"
	if got := Score(influencer, business).MatchScore; got != locationPoints {
		t.Fatalf("expected location points, got %d", got)
	}
}

func TestScoreBoundaries(t *testing.T) {
	t.Parallel()

	influencer, business := mismatchedPair()
	influencer.Followers = 100000
	influencer.Engagement = 4.0
	influencer.Pricing = profile.Pricing{SponsoredPost: 70000, ReelPost: 50000}

	result := Score(influencer, business)

	expected := []string{ReasonSize, ReasonEngagement, ReasonBudget}
	if result.MatchScore != 45 || !reflect.DeepEqual(result.Reasoning, expected) {
		t.Fatalf("expected inclusive bounds to match, got %d %v", result.MatchScore, result.Reasoning)
	}
}

func TestScoreDeterministicAndBounded(t *testing.T) {
	t.Parallel()

	dir, err := profile.Load("")
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	for _, i := range dir.Influencers.Items {
		for _, b := range dir.Businesses.Items {
			first := Score(i, b)
			second := Score(i, b)

			if !reflect.DeepEqual(first, second) {
				t.Fatalf("non-deterministic result for %s/%s", i.ID, b.ID)
			}
			if first.MatchScore < 0 || first.MatchScore > 100 {
				t.Fatalf("score out of bounds for %s/%s: %d", i.ID, b.ID, first.MatchScore)
			}
			if len(first.SuggestedCollaborations) != 3 {
				t.Fatalf("expected 3 suggestions, got %v", first.SuggestedCollaborations)
			}
			if !reflect.DeepEqual(first.SuggestedCollaborations, SuggestionsForScore(first.MatchScore)) {
				t.Fatalf("tier mismatch for score %d", first.MatchScore)
			}
		}
	}
}

func TestSuggestionsForScoreThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score  int
		expect []string
	}{
		{0, LowTierSuggestions},
		{59, LowTierSuggestions},
		{60, MediumTierSuggestions},
		{79, MediumTierSuggestions},
		{80, HighTierSuggestions},
		{100, HighTierSuggestions},
	}

	for _, tt := range tests {
		if got := SuggestionsForScore(tt.score); !reflect.DeepEqual(got, tt.expect) {
			t.Fatalf("score %d: expected %v, got %v", tt.score, tt.expect, got)
		}
	}

	got := SuggestionsForScore(100)
	got[0] = "mutated"
	if HighTierSuggestions[0] == "mutated" {
		t.Fatalf("suggestions must be copied")
	}
}

func TestMatcherEvaluate(t *testing.T) {
	t.Parallel()

	influencer, business := perfectPair()
	m := NewMatcher(Options{}, 0, zap.NewNop())

	result, err := m.Evaluate(context.Background(), influencer, business)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.MatchScore != 100 || result.Source != "rules" {
		t.Fatalf("unexpected result: %+v", result)
	}

	if _, err := m.Evaluate(context.Background(), nil, business); err == nil {
		t.Fatalf("expected error for nil influencer")
	}
	if _, err := m.Evaluate(context.Background(), influencer, nil); err == nil {
		t.Fatalf("expected error for nil business")
	}
}

func TestMatcherHonorsContextDuringDelay(t *testing.T) {
	t.Parallel()

	influencer, business := perfectPair()
	m := NewMatcher(Options{}, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Evaluate(ctx, influencer, business)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
