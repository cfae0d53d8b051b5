package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driverperks/catalog/app/database"
	"github.com/driverperks/catalog/app/points"
	"github.com/driverperks/catalog/app/rules"
	"github.com/driverperks/catalog/app/search"
)

type fakeCurated struct {
	items map[database.CuratedKind][]database.CuratedItem
	err   error
}

func (f *fakeCurated) ListByKind(_ string, kind database.CuratedKind) ([]database.CuratedItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[kind], nil
}

func (f *fakeCurated) ListIDsByKind(_ string, kind database.CuratedKind) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []string
	for _, item := range f.items[kind] {
		ids = append(ids, item.ItemID)
	}
	return ids, nil
}

func (f *fakeCurated) Upsert(database.CuratedItem) error { return nil }
func (f *fakeCurated) Delete(string, string, database.CuratedKind) error {
	return nil
}
func (f *fakeCurated) UpdateDisplay(string, string, string, *float64) error { return nil }
func (f *fakeCurated) ListStaleDisplay(time.Time, int) ([]database.CuratedItem, error) {
	return nil, nil
}

type fakeLookup struct {
	items map[string]*search.Item
	calls []string
}

func (f *fakeLookup) GetItem(_ context.Context, id string) (*search.Item, error) {
	f.calls = append(f.calls, id)
	if item, ok := f.items[id]; ok {
		copied := *item
		return &copied, nil
	}
	return nil, errors.New("not found")
}

type fakeScopes struct {
	scope *database.Scope
}

func (f *fakeScopes) GetScope(string) (*database.Scope, error) {
	return f.scope, nil
}

type fakeRules struct {
	fragments []rules.Fragment
	byID      map[string]*rules.Fragment
}

func (f *fakeRules) GetActiveFragments(string) ([]rules.Fragment, error) {
	return f.fragments, nil
}

func (f *fakeRules) GetFragment(_, id string) (*rules.Fragment, error) {
	return f.byID[id], nil
}

type fakePolicies struct {
	policy *points.Policy
}

func (f *fakePolicies) GetPolicy(string) (*points.Policy, error) {
	return f.policy, nil
}

type fakeCacheRepo struct {
	entries map[string]database.CacheEntry
	sets    int
}

func cacheKey(scope, fingerprint string, page int, sort string) string {
	return fmt.Sprintf("%s|%s|%d|%s", scope, fingerprint, page, sort)
}

func (f *fakeCacheRepo) Get(scope, fingerprint string, page int, sort string) (*database.CacheEntry, error) {
	entry, ok := f.entries[cacheKey(scope, fingerprint, page, sort)]
	if !ok || entry.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return &entry, nil
}

func (f *fakeCacheRepo) Set(entry database.CacheEntry) error {
	if f.entries == nil {
		f.entries = make(map[string]database.CacheEntry)
	}
	f.sets++
	f.entries[cacheKey(entry.Scope, entry.Fingerprint, entry.Page, entry.Sort)] = entry
	return nil
}

func (f *fakeCacheRepo) FlushScope(string) (int64, error) { return 0, nil }
func (f *fakeCacheRepo) DeleteExpired() (int64, error)    { return 0, nil }
func (f *fakeCacheRepo) CountEntries() (int, error)       { return len(f.entries), nil }

type fakeFetcher struct {
	result *search.Result
	calls  int
	last   search.Request
}

func (f *fakeFetcher) FetchPage(_ context.Context, req search.Request) *search.Result {
	f.calls++
	f.last = req
	if f.result != nil {
		return f.result
	}
	return &search.Result{Items: []search.Item{}, Page: req.Page}
}

func fprice(v float64) *float64 { return &v }

func rankOf(v int) *int { return &v }

func rawItem(id string, price float64) search.Item {
	return search.Item{ID: id, Title: "item " + id, Price: fprice(price), InStock: true}
}
