package profile

import (
	_ "embed"

	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/directory.yaml
var defaultFixtures []byte

type Influencers struct {
	Items []*Influencer
}

type Businesses struct {
	Items []*Business
}

// Directory holds every profile known to the marketplace.
type Directory struct {
	Influencers *Influencers
	Businesses  *Businesses
}

type rawDirectory struct {
	Influencers []map[string]any `yaml:"influencers"`
	Businesses  []map[string]any `yaml:"businesses"`
}

// Load reads the directory from the YAML file at path. An empty path loads the
// built-in fixtures.
func Load(path string) (*Directory, error) {
	data := defaultFixtures

	path = strings.TrimSpace(path)
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading fixtures %q: %w", path, err)
		}
		data = b
	}

	return Parse(data)
}

// Parse decodes a YAML directory document.
func Parse(data []byte) (*Directory, error) {
	var raw rawDirectory
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}

	var influencers []*Influencer
	if err := decode(raw.Influencers, &influencers); err != nil {
		return nil, fmt.Errorf("decode influencers: %w", err)
	}

	var businesses []*Business
	if err := decode(raw.Businesses, &businesses); err != nil {
		return nil, fmt.Errorf("decode businesses: %w", err)
	}

	dir := &Directory{
		Influencers: &Influencers{Items: influencers},
		Businesses:  &Businesses{Items: businesses},
	}

	if err := dir.validate(); err != nil {
		return nil, err
	}

	return dir, nil
}

func decode(input any, output any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func (d *Directory) validate() error {
	seen := make(map[string]struct{})
	for _, u := range d.Users() {
		if strings.TrimSpace(u.ID) == "" {
			return fmt.Errorf("%s %q has no id", u.Type, u.Name)
		}
		if _, ok := seen[u.ID]; ok {
			return fmt.Errorf("duplicate profile id %q", u.ID)
		}
		seen[u.ID] = struct{}{}
	}
	return nil
}

// Users returns all influencers followed by all businesses.
func (d *Directory) Users() []User {
	users := make([]User, 0, d.Influencers.Len()+d.Businesses.Len())
	for _, i := range d.Influencers.Items {
		users = append(users, i.User())
	}
	for _, b := range d.Businesses.Items {
		users = append(users, b.User())
	}
	return users
}

func (v *Influencers) Len() int {
	return len(v.Items)
}

// Find looks an influencer up by id first and by case-insensitive name second.
func (v *Influencers) Find(key string) *Influencer {
	key = strings.TrimSpace(key)
	for _, i := range v.Items {
		if i.ID == key {
			return i
		}
	}
	for _, i := range v.Items {
		if strings.EqualFold(i.Name, key) {
			return i
		}
	}
	return nil
}

func (v *Influencers) Names() []string {
	names := make([]string, 0, len(v.Items))
	for _, i := range v.Items {
		names = append(names, i.Name)
	}
	return names
}

func (v *Influencers) IDs() []string {
	ids := make([]string, 0, len(v.Items))
	for _, i := range v.Items {
		ids = append(ids, i.ID)
	}
	return ids
}

// Clone returns a shallow copy whose Items slice can be filtered independently.
func (v *Influencers) Clone() *Influencers {
	items := make([]*Influencer, len(v.Items))
	copy(items, v.Items)
	return &Influencers{Items: items}
}

// Exclude removes influencers whose field matches any target and returns
// the removed ids. Order of the remaining items is preserved.
func (v *Influencers) Exclude(name string, targets []string) []string {
	set := make(map[string]struct{}, len(targets))
	for _, t := range targets {
		set[t] = struct{}{}
	}

	return v.Retain(func(i *Influencer) bool {
		_, drop := set[i.GetStringField(name)]
		return !drop
	})
}

// Retain keeps only influencers for which keep returns true and returns the
// ids of the dropped ones.
func (v *Influencers) Retain(keep func(*Influencer) bool) []string {
	var dropped []string
	kept := v.Items[:0]
	for _, i := range v.Items {
		if keep(i) {
			kept = append(kept, i)
			continue
		}
		dropped = append(dropped, i.ID)
	}
	v.Items = kept
	return dropped
}

func (v *Businesses) Len() int {
	return len(v.Items)
}

// Find looks a business up by id first and by case-insensitive name second.
func (v *Businesses) Find(key string) *Business {
	key = strings.TrimSpace(key)
	for _, b := range v.Items {
		if b.ID == key {
			return b
		}
	}
	for _, b := range v.Items {
		if strings.EqualFold(b.Name, key) {
			return b
		}
	}
	return nil
}

func (v *Businesses) Names() []string {
	names := make([]string, 0, len(v.Items))
	for _, b := range v.Items {
		names = append(names, b.Name)
	}
	return names
}
