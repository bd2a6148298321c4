// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"errors"
	"testing"
	"time"

	"quillpress/internal/models"
)

// fakeClock returns a controllable time source for cache tests.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func twoCategories() []models.Category {
	return []models.Category{
		{ID: 1, Name: "Technology"},
		{ID: 2, Name: "Travel"},
	}
}

func TestCategoryCacheFetchesOnceWithinWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	calls := 0
	c := NewCategoryCache(func() ([]models.Category, error) {
		calls++
		return twoCategories(), nil
	}, DefaultCategoryTTL, clock.Now)

	for i := 0; i < 5; i++ {
		got := c.Get()
		if len(got) != 2 {
			t.Fatalf("Get returned %d categories, want 2", len(got))
		}
		clock.Advance(30 * time.Second)
	}

	if calls != 1 {
		t.Errorf("fetch called %d times within freshness window, want 1", calls)
	}
}

func TestCategoryCacheRefetchesAfterExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	calls := 0
	c := NewCategoryCache(func() ([]models.Category, error) {
		calls++
		return twoCategories(), nil
	}, DefaultCategoryTTL, clock.Now)

	c.Get()
	clock.Advance(DefaultCategoryTTL) // exactly at the boundary counts as stale
	c.Get()

	if calls != 2 {
		t.Errorf("fetch called %d times across expiry, want 2", calls)
	}
}

func TestCategoryCacheDegradesToStaleOnFailure(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	calls := 0
	c := NewCategoryCache(func() ([]models.Category, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("store unavailable")
		}
		return twoCategories(), nil
	}, DefaultCategoryTTL, clock.Now)

	first := c.Get()
	if len(first) != 2 {
		t.Fatalf("first Get returned %d categories, want 2", len(first))
	}

	clock.Advance(10 * time.Minute)
	second := c.Get()
	if len(second) != 2 {
		t.Errorf("Get after failed refetch returned %d categories, want stale 2", len(second))
	}
}

func TestCategoryCacheEmptyWhenFirstFetchFails(t *testing.T) {
	c := NewCategoryCache(func() ([]models.Category, error) {
		return nil, errors.New("store unavailable")
	}, DefaultCategoryTTL, nil)

	if got := c.Get(); len(got) != 0 {
		t.Errorf("Get returned %d categories after failed first fetch, want 0", len(got))
	}
}

func TestCategoryCacheFailedFetchDoesNotResetWindow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	calls := 0
	c := NewCategoryCache(func() ([]models.Category, error) {
		calls++
		if calls == 2 {
			return nil, errors.New("blip")
		}
		return twoCategories(), nil
	}, DefaultCategoryTTL, clock.Now)

	// Fetch 1 succeeds, then the window expires.
	c.Get()
	clock.Advance(6 * time.Minute)

	// Fetch 2 fails and serves the stale list; the next read must retry
	// instead of treating the failed refresh as fresh.
	c.Get()
	c.Get()
	if calls != 3 {
		t.Errorf("fetch called %d times, want 3 (failure must not refresh the window)", calls)
	}
}

func TestResolveNameCaseInsensitive(t *testing.T) {
	c := NewCategoryCache(func() ([]models.Category, error) {
		return twoCategories(), nil
	}, 0, nil)

	for _, name := range []string{"travel", "TRAVEL", "Travel", "tRaVeL"} {
		cat, ok := c.ResolveName(name)
		if !ok {
			t.Fatalf("ResolveName(%q) not found", name)
		}
		if cat.ID != 2 {
			t.Errorf("ResolveName(%q) = id %d, want 2", name, cat.ID)
		}
	}

	if _, ok := c.ResolveName("does-not-exist"); ok {
		t.Error("ResolveName of unknown category should return false")
	}
}

func TestNameByID(t *testing.T) {
	c := NewCategoryCache(func() ([]models.Category, error) {
		return twoCategories(), nil
	}, 0, nil)

	name, ok := c.NameByID(1)
	if !ok || name != "Technology" {
		t.Errorf("NameByID(1) = %q, %v; want Technology, true", name, ok)
	}

	if _, ok := c.NameByID(99); ok {
		t.Error("NameByID of dangling id should return false")
	}
}
