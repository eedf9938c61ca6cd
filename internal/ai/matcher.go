package ai

import (
	"context"

	"github.com/spigell/collabmatch/internal/profile"
)

const (
	SourceRules  = "rules"
	SourceGemini = "gemini"
)

// MatchResult describes how well an influencer fits a business.
type MatchResult struct {
	MatchScore              int      `json:"matchScore"`
	Reasoning               []string `json:"reasoning"`
	SuggestedCollaborations []string `json:"suggestedCollaborations"`
	Source                  string   `json:"source,omitempty"`
}

// Clone returns a deep copy so callers can modify results they receive.
func (r *MatchResult) Clone() *MatchResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Reasoning = append([]string(nil), r.Reasoning...)
	out.SuggestedCollaborations = append([]string(nil), r.SuggestedCollaborations...)
	return &out
}

type Matcher interface {
	Evaluate(ctx context.Context, influencer *profile.Influencer, business *profile.Business) (*MatchResult, error)
}
