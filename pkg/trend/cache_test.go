package trend

import (
	"context"
	"errors"
	"testing"
	"time"

	"truetrend/pkg/source"
)

func fixedItems(keyword string, heat float64) []source.HeatItem {
	return []source.HeatItem{{
		Keyword:    keyword,
		HeatScore:  heat,
		Platform:   source.PlatformWeibo,
		ObservedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestCacheServesWithinTTL(t *testing.T) {
	c := NewCache(5 * time.Minute)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	calls := 0
	fetch := func(ctx context.Context) ([]source.HeatItem, error) {
		calls++
		return fixedItems("话题", 100), nil
	}

	for i := 0; i < 3; i++ {
		items, err := c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)
		if err != nil {
			t.Fatalf("GetOrFetch: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d items, want 1", len(items))
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times within TTL, want 1", calls)
	}
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c := NewCache(5 * time.Minute)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	calls := 0
	fetch := func(ctx context.Context) ([]source.HeatItem, error) {
		calls++
		return fixedItems("话题", 100), nil
	}

	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)
	clock = clock.Add(5 * time.Minute)
	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)

	if calls != 2 {
		t.Errorf("fetch called %d times across TTL expiry, want 2", calls)
	}
}

func TestCacheBypass(t *testing.T) {
	c := NewCache(5 * time.Minute)

	calls := 0
	fetch := func(ctx context.Context) ([]source.HeatItem, error) {
		calls++
		return fixedItems("话题", 100), nil
	}

	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, false)
	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, false)
	if calls != 2 {
		t.Errorf("fetch called %d times with cache bypassed, want 2", calls)
	}

	// The bypassing fetches still refreshed the entry.
	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)
	if calls != 2 {
		t.Errorf("fetch called %d times, cached entry should have served", calls)
	}
}

func TestCacheKeepsSnapshotOnFailure(t *testing.T) {
	c := NewCache(5 * time.Minute)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	good := func(ctx context.Context) ([]source.HeatItem, error) {
		return fixedItems("话题", 100), nil
	}
	bad := func(ctx context.Context) ([]source.HeatItem, error) {
		return nil, errors.New("upstream down")
	}

	if _, err := c.GetOrFetch(context.Background(), source.PlatformWeibo, good, true); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	// Forced refresh fails: caller gets the error, entry survives.
	items, err := c.GetOrFetch(context.Background(), source.PlatformWeibo, bad, false)
	if err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if items != nil {
		t.Errorf("failed fetch returned items: %v", items)
	}

	items, err = c.GetOrFetch(context.Background(), source.PlatformWeibo, bad, true)
	if err != nil {
		t.Fatalf("cached read after failure: %v", err)
	}
	if len(items) != 1 || items[0].Keyword != "话题" {
		t.Errorf("previous snapshot lost after failed refresh: %v", items)
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(5 * time.Minute)

	calls := 0
	fetch := func(ctx context.Context) ([]source.HeatItem, error) {
		calls++
		return fixedItems("话题", 100), nil
	}

	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)
	c.Clear(source.PlatformWeibo)
	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)
	if calls != 2 {
		t.Errorf("fetch called %d times after Clear, want 2", calls)
	}

	c.Clear()
	c.GetOrFetch(context.Background(), source.PlatformWeibo, fetch, true)
	if calls != 3 {
		t.Errorf("fetch called %d times after full Clear, want 3", calls)
	}
}

func TestCacheIsolatesPlatforms(t *testing.T) {
	c := NewCache(5 * time.Minute)

	weiboCalls, zhihuCalls := 0, 0
	c.GetOrFetch(context.Background(), source.PlatformWeibo, func(ctx context.Context) ([]source.HeatItem, error) {
		weiboCalls++
		return fixedItems("甲", 1), nil
	}, true)
	c.GetOrFetch(context.Background(), source.PlatformZhihu, func(ctx context.Context) ([]source.HeatItem, error) {
		zhihuCalls++
		return fixedItems("乙", 2), nil
	}, true)

	if weiboCalls != 1 || zhihuCalls != 1 {
		t.Errorf("platform entries not independent: weibo=%d zhihu=%d", weiboCalls, zhihuCalls)
	}
}
