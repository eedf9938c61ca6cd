// Package rules implements the deterministic weighted matchmaking score.
package rules

import (
	"strings"

	"github.com/spigell/collabmatch/internal/ai"
	"github.com/spigell/collabmatch/internal/profile"
)

const (
	categoryPoints   = 30
	thematicPoints   = 20
	locationPoints   = 10
	sizePoints       = 15
	engagementPoints = 15
	contentPoints    = 15
	budgetPoints     = 15

	highTierScore   = 80
	mediumTierScore = 60
)

const (
	ReasonCategory   = "Perfect category alignment between influencer and business"
	ReasonThematic   = "Strong thematic alignment between influencer's content and business's target audience"
	ReasonLocation   = "Same location enables better collaboration opportunities"
	ReasonSize       = "Influencer's audience size matches business requirements"
	ReasonEngagement = "High engagement rate meets business expectations"
	ReasonContent    = "Content style aligns with business preferences"
	ReasonBudget     = "Pricing aligns with business budget expectations"
)

var (
	HighTierSuggestions   = []string{"Long-term brand ambassador partnership", "Product launch campaign", "Exclusive content series"}
	MediumTierSuggestions = []string{"Sponsored content series", "Product review campaign", "Social media takeover"}
	LowTierSuggestions    = []string{"One-time sponsored post", "Product showcase", "Brand mention campaign"}
)

// Options tune the scorer. The zero value reproduces the reference scoring.
type Options struct {
	// OpenEndedSizes lets "500k+" style ranges match followers at or above the bound.
	OpenEndedSizes bool
}

type criterion struct {
	points int
	reason string
	check  func(opts Options, i *profile.Influencer, b *profile.Business) bool
}

// Criteria are evaluated in this order; category and thematic alignment share one slot.
var criteria = []criterion{
	{locationPoints, ReasonLocation, sameLocation},
	{sizePoints, ReasonSize, audienceSizeMatches},
	{engagementPoints, ReasonEngagement, engagementMatches},
	{contentPoints, ReasonContent, contentStyleMatches},
	{budgetPoints, ReasonBudget, budgetMatches},
}

// Score computes the match between one influencer and one business using the
// default options. Both records must be non-nil.
func Score(influencer *profile.Influencer, business *profile.Business) *ai.MatchResult {
	return Options{}.Score(influencer, business)
}

func (o Options) Score(influencer *profile.Influencer, business *profile.Business) *ai.MatchResult {
	score := 0
	reasoning := make([]string, 0, len(criteria)+1)

	switch {
	case containsFold(influencer.Category, business.Category):
		score += categoryPoints
		reasoning = append(reasoning, ReasonCategory)
	case anyContains(business.TargetAudience, influencer.Tags):
		score += thematicPoints
		reasoning = append(reasoning, ReasonThematic)
	}

	for _, c := range criteria {
		if c.check(o, influencer, business) {
			score += c.points
			reasoning = append(reasoning, c.reason)
		}
	}

	return &ai.MatchResult{
		MatchScore:              score,
		Reasoning:               reasoning,
		SuggestedCollaborations: SuggestionsForScore(score),
		Source:                  ai.SourceRules,
	}
}

// SuggestionsForScore returns a fresh copy of the collaboration tier for score.
func SuggestionsForScore(score int) []string {
	var tier []string
	switch {
	case score >= highTierScore:
		tier = HighTierSuggestions
	case score >= mediumTierScore:
		tier = MediumTierSuggestions
	default:
		tier = LowTierSuggestions
	}
	return append([]string(nil), tier...)
}

func sameLocation(_ Options, i *profile.Influencer, b *profile.Business) bool {
	return i.Location == b.Location
}

func audienceSizeMatches(opts Options, i *profile.Influencer, b *profile.Business) bool {
	r, err := ParseSizeRange(b.Preferences.InfluencerSize)
	if err != nil {
		return false
	}
	if !r.Bounded && !opts.OpenEndedSizes {
		return false
	}
	return r.Contains(i.Followers)
}

func engagementMatches(_ Options, i *profile.Influencer, b *profile.Business) bool {
	return i.Engagement >= b.Preferences.EngagementRate
}

func contentStyleMatches(_ Options, i *profile.Influencer, b *profile.Business) bool {
	return anyContains(i.ContentTypes, b.Preferences.ContentStyle)
}

func budgetMatches(_ Options, i *profile.Influencer, b *profile.Business) bool {
	return b.Budget.Includes(i.Pricing.AveragePostPrice())
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// anyContains reports whether any needle is a case-insensitive substring of any haystack.
func anyContains(haystacks, needles []string) bool {
	for _, h := range haystacks {
		for _, n := range needles {
			if containsFold(h, n) {
				return true
			}
		}
	}
	return false
}
