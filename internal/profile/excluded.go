package profile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"
)

const (
	ExcludeActorUser   = "user"
	ExcludeActorScorer = "scorer"
)

type ExcludedInfluencers struct {
	Items []*ExcludedInfluencer
}

type ExcludedInfluencer struct {
	ID         string
	Name       string
	Actor      string `json:",omitempty"`
	Reason     string `json:",omitempty"`
	ExcludedAt time.Time
}

func (v *Influencers) ToExcluded(actor, reason string) *ExcludedInfluencers {
	excluded := &ExcludedInfluencers{}
	for _, i := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedInfluencer{
			ID:         i.ID,
			Name:       i.Name,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

// GetExcludedFromFile reads the exclusion list. A missing or empty file yields
// an empty list.
func GetExcludedFromFile(path string) (*ExcludedInfluencers, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &ExcludedInfluencers{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedInfluencers{}, nil
	}

	var excluded ExcludedInfluencers
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Append adds entries whose ids are not yet present.
func (v *ExcludedInfluencers) Append(s *ExcludedInfluencers) {
	known := make(map[string]struct{}, len(v.Items))
	for _, item := range v.Items {
		known[item.ID] = struct{}{}
	}
	for _, item := range s.Items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		v.Items = append(v.Items, item)
	}
}

func (v *ExcludedInfluencers) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (v *ExcludedInfluencers) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
