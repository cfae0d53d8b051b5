package catalog

import (
	"context"
	"testing"

	"github.com/driverperks/catalog/app/cache"
	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/search"
)

func newTestComposer(curated *fakeCurated, lookup *fakeLookup) *Composer {
	return NewComposer(curated, cache.NewMemory(), lookup)
}

func itemIDs(items []search.Item) []string {
	ids := make([]string, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	return ids
}

func TestComposer_PinnedFirstInRankOrder(t *testing.T) {
	// The fake returns stored order, so feed it rank-sorted the way the
	// real query would.
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "p1", Rank: rankOf(1), Title: "first pin", Price: fprice(3)},
			{ItemID: "p2", Rank: rankOf(2), Title: "second pin", Price: fprice(5)},
		},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	raw := []search.Item{rawItem("r1", 10), rawItem("r2", 20)}

	out, err := composer.Run(context.Background(), "acme", raw, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := itemIDs(out)
	want := []string{"p1", "p2", "r1", "r2"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Expected order %v, got %v", want, got)
		}
	}
	if !out[0].Pinned || out[0].Rank == nil || *out[0].Rank != 1 {
		t.Errorf("Expected first item pinned with rank 1, got %+v", out[0])
	}
	if out[2].Pinned {
		t.Errorf("Expected raw item not to be marked pinned")
	}
}

func TestComposer_PinnedPrefersLiveRawItem(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "r1", Rank: rankOf(1), Title: "stale title", Price: fprice(1)},
		},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	raw := []search.Item{rawItem("r1", 10), rawItem("r2", 20)}

	out, err := composer.Run(context.Background(), "acme", raw, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("Expected 2 items (no duplicate), got %d: %v", len(out), itemIDs(out))
	}
	if out[0].ID != "r1" || out[0].Title != "item r1" || *out[0].Price != 10 {
		t.Errorf("Expected live raw data for pinned item, got %+v", out[0])
	}
	if !out[0].Pinned {
		t.Errorf("Expected pinned flag on live item")
	}
}

func TestComposer_PinnedWithoutPriceIsEnriched(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "p1", Rank: rankOf(1), Title: "placeholder"},
		},
	}}
	lookup := &fakeLookup{items: map[string]*search.Item{
		"p1": {ID: "p1", Title: "fresh title", Price: fprice(42), InStock: true},
	}}

	composer := newTestComposer(curated, lookup)
	out, err := composer.Run(context.Background(), "acme", nil, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(lookup.calls) != 1 || lookup.calls[0] != "p1" {
		t.Fatalf("Expected one lookup for p1, got %v", lookup.calls)
	}
	if out[0].Price == nil || *out[0].Price != 42 {
		t.Errorf("Expected enriched price 42, got %+v", out[0].Price)
	}
	if !out[0].Pinned || out[0].Rank == nil {
		t.Errorf("Expected enrichment to preserve pinned flag and rank")
	}
}

func TestComposer_EnrichmentFailureKeepsPlaceholder(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "gone", Rank: rankOf(1), Title: "cached title", ImageURL: "img.jpg"},
		},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	out, err := composer.Run(context.Background(), "acme", nil, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(out) != 1 || out[0].Title != "cached title" || out[0].ImageURL != "img.jpg" {
		t.Errorf("Expected cached display data to survive lookup failure, got %+v", out)
	}
}

func TestComposer_ExcludePinnedSuppressesPinsOnly(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "p1", Rank: rankOf(1), Title: "pin", Price: fprice(1)},
		},
		database.CuratedIncluded: {
			{ItemID: "inc1", Title: "included", Price: fprice(2)},
		},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	raw := []search.Item{rawItem("r1", 10)}

	out, err := composer.Run(context.Background(), "acme", raw, true)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := itemIDs(out)
	if len(got) != 2 || got[0] != "inc1" || got[1] != "r1" {
		t.Errorf("Expected [inc1 r1], got %v", got)
	}
}

func TestComposer_ExcludedAndBlacklistedDropped(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedExcluded: {
			{ItemID: "r2"},
		},
		database.CuratedBlacklisted: {
			{ItemID: "r3"},
		},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	raw := []search.Item{rawItem("r1", 1), rawItem("r2", 2), rawItem("r3", 3)}

	out, err := composer.Run(context.Background(), "acme", raw, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := itemIDs(out)
	if len(got) != 1 || got[0] != "r1" {
		t.Errorf("Expected only r1 to survive, got %v", got)
	}
}

func TestComposer_BlacklistBeatsPin(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "p1", Rank: rankOf(1), Title: "banned pin", Price: fprice(1)},
		},
		database.CuratedBlacklisted: {
			{ItemID: "p1"},
		},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	out, err := composer.Run(context.Background(), "acme", nil, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(out) != 0 {
		t.Errorf("Expected blacklisted pin to be suppressed, got %v", itemIDs(out))
	}
}

func TestComposer_BlacklistIsCachedAcrossRuns(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedBlacklisted: {{ItemID: "x"}},
	}}
	store := cache.NewMemory()
	composer := NewComposer(curated, store, &fakeLookup{})

	ctx := context.Background()
	if _, err := composer.Run(ctx, "acme", nil, false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Mutate the repo; the cached snapshot should still answer.
	curated.items[database.CuratedBlacklisted] = append(
		curated.items[database.CuratedBlacklisted], database.CuratedItem{ItemID: "y"})

	out, err := composer.Run(ctx, "acme", []search.Item{rawItem("y", 1)}, false)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(out) != 1 || out[0].ID != "y" {
		t.Errorf("Expected stale cached blacklist to let y through, got %v", itemIDs(out))
	}
}

func TestComposer_PinnedOnly(t *testing.T) {
	curated := &fakeCurated{items: map[database.CuratedKind][]database.CuratedItem{
		database.CuratedPinned: {
			{ItemID: "p1", Rank: rankOf(1), Title: "pin one", Price: fprice(5)},
			{ItemID: "p2", Rank: rankOf(2), Title: "pin two", Price: fprice(6)},
		},
		database.CuratedBlacklisted: {{ItemID: "p2"}},
	}}

	composer := newTestComposer(curated, &fakeLookup{})
	out, err := composer.PinnedOnly(context.Background(), "acme")
	if err != nil {
		t.Fatalf("PinnedOnly failed: %v", err)
	}

	got := itemIDs(out)
	if len(got) != 1 || got[0] != "p1" {
		t.Errorf("Expected [p1], got %v", got)
	}
}
