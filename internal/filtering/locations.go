package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/collabmatch/internal/profile"
)

type locationsFilter struct {
	enabled   bool
	reason    string
	locations []string
	logger    *zap.Logger
}

// NewLocations creates a filter that keeps only influencers based in one of
// the given cities. An empty list disables the filter.
func NewLocations(locations []string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}

	cleaned := make([]string, 0, len(locations))
	for _, l := range locations {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}

	f := &locationsFilter{enabled: true, locations: cleaned, logger: logger}
	if len(cleaned) == 0 {
		f.Disable("no locations configured")
	}
	return f
}

func (f *locationsFilter) Name() string { return "locations" }

func (f *locationsFilter) Disable(reason string) {
	f.enabled = false
	f.reason = reason
}

func (f *locationsFilter) IsEnabled() bool { return f.enabled }

func (f *locationsFilter) Validate() error { return nil }

func (f *locationsFilter) Apply(_ context.Context, v *profile.Influencers) (*profile.Influencers, Step, error) {
	initial := v.Len()

	dropped := v.Retain(func(i *profile.Influencer) bool {
		for _, l := range f.locations {
			if strings.EqualFold(strings.TrimSpace(i.Location), l) {
				return true
			}
		}
		return false
	})

	if len(dropped) > 0 {
		f.logger.Info("excluding influencers outside of configured locations",
			zap.Strings("locations", f.locations),
			zap.Strings("excluded_influencers", dropped),
			zap.Int("influencers_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *locationsFilter) Status() Status {
	details := map[string]string{}
	if len(f.locations) > 0 {
		details["locations"] = strings.Join(f.locations, ",")
	}
	return Status{Name: f.Name(), Enabled: f.enabled, Reason: f.reason, Details: details}
}
