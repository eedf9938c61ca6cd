package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultFixtures(t *testing.T) {
	t.Parallel()

	dir, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Influencers.Len() == 0 || dir.Businesses.Len() == 0 {
		t.Fatalf("expected built-in fixtures, got %d influencers and %d businesses", dir.Influencers.Len(), dir.Businesses.Len())
	}

	ankit := dir.Influencers.Find("13")
	if ankit == nil {
		t.Fatalf("expected influencer 13")
	}
	if ankit.Followers != 680000 || ankit.Engagement != 6.2 {
		t.Fatalf("unexpected audience numbers: %+v", ankit)
	}
	if ankit.Pricing.SponsoredPost != 20000 || ankit.Pricing.ReelPost != 15000 {
		t.Fatalf("unexpected pricing: %+v", ankit.Pricing)
	}

	eco := dir.Businesses.Find("ecostyle")
	if eco == nil {
		t.Fatalf("expected to find EcoStyle by name")
	}
	if eco.Preferences.InfluencerSize != "100k-500k" || eco.Budget.Max != 50000 {
		t.Fatalf("unexpected business: %+v", eco)
	}
}

func TestParseCoercesNumericIDs(t *testing.T) {
	t.Parallel()

	doc := []byte(`
influencers:
  - id: 7
    name: Numeric
    followers: 10
businesses:
  - id: 8
    name: Biz
    budget: {min: 1, max: 2}
`)

	dir, err := Parse(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := dir.Influencers.Items[0].ID; got != "7" {
		t.Fatalf("expected id 7, got %q", got)
	}
	if got := dir.Businesses.Items[0].Budget.Max; got != 2 {
		t.Fatalf("expected budget max 2, got %v", got)
	}
}

func TestParseRejectsDuplicateIDs(t *testing.T) {
	t.Parallel()

	doc := []byte(`
influencers:
  - id: "1"
    name: A
businesses:
  - id: "1"
    name: B
`)

	if _, err := Parse(doc); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dir.yaml")
	if err := os.WriteFile(path, []byte("influencers: []\nbusinesses: []\n"), 0o600); err != nil {
		t.Fatalf("write fixtures: %v", err)
	}

	dir, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir.Influencers.Len() != 0 {
		t.Fatalf("expected empty directory")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestInfluencersExcludeKeepsOrder(t *testing.T) {
	t.Parallel()

	v := &Influencers{Items: []*Influencer{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}}
	clone := v.Clone()

	removed := clone.Exclude(InfluencerIDField, []string{"b", "d", "zzz"})

	if len(removed) != 2 || removed[0] != "b" || removed[1] != "d" {
		t.Fatalf("unexpected removed ids: %v", removed)
	}
	ids := clone.IDs()
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "c" {
		t.Fatalf("unexpected remaining ids: %v", ids)
	}
	if v.Len() != 4 {
		t.Fatalf("expected original list untouched, got %d", v.Len())
	}
}

func TestExcludedFileRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "excluded.json")

	excluded, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("missing file should be empty list: %v", err)
	}

	v := &Influencers{Items: []*Influencer{{ID: "1", Name: "One"}, {ID: "2", Name: "Two"}}}
	excluded.Append(v.ToExcluded(ExcludeActorScorer, "low score"))
	excluded.Append(v.ToExcluded(ExcludeActorUser, "again"))

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("write: %v", err)
	}

	read, err := GetExcludedFromFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	ids := read.IDs()
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
	if read.Items[0].Actor != ExcludeActorScorer || read.Items[0].Reason != "low score" {
		t.Fatalf("unexpected first entry: %+v", read.Items[0])
	}
}
