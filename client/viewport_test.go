package client

import (
	"sync"
	"testing"
	"time"

	"storefront_backend/internal/models"
	"storefront_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	pages    map[int][]models.Notification
	total    int64
	requests []fetchRequest
}

type fetchRequest struct {
	filters ListFilters
	page    int
	limit   int
}

func (f *fakeFetcher) FetchNotifications(filters ListFilters, page, limit int) (*dto.NotificationListResponse, error) {
	f.requests = append(f.requests, fetchRequest{filters: filters, page: page, limit: limit})
	return &dto.NotificationListResponse{
		Notifications: f.pages[page],
		Total:         f.total,
		Page:          page,
		Limit:         limit,
	}, nil
}

// gatedFetcher blocks each fetch on a token from gate so tests can hold
// a page load in flight.
type gatedFetcher struct {
	mu       sync.Mutex
	requests []fetchRequest
	gate     chan struct{}
	respond  func(filters ListFilters, page int) []models.Notification
	total    int64
}

func (f *gatedFetcher) FetchNotifications(filters ListFilters, page, limit int) (*dto.NotificationListResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, fetchRequest{filters: filters, page: page, limit: limit})
	f.mu.Unlock()
	<-f.gate
	return &dto.NotificationListResponse{
		Notifications: f.respond(filters, page),
		Total:         f.total,
		Page:          page,
		Limit:         limit,
	}, nil
}

func (f *gatedFetcher) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *gatedFetcher) lastRequest() fetchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func makePage(startID uint64, n int) []models.Notification {
	base := time.Now()
	out := make([]models.Notification, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Notification{
			ID:        startID - uint64(i),
			Type:      models.TypeOrderPlaced,
			Title:     "Order",
			Status:    models.StatusUnread,
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		})
	}
	return out
}

func TestFullPageMeansMoreMayExist(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{1: makePage(100, defaultViewportLimit)},
		total: 45,
	}
	vp := NewViewport(fetcher)

	require.NoError(t, vp.Reload())
	assert.Len(t, vp.Items(), defaultViewportLimit)
	assert.True(t, vp.HasMore())
	assert.Equal(t, int64(45), vp.Total())
}

func TestShortPageEndsTheWindow(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{1: makePage(100, 7)},
		// Stale total: records were archived between count and fetch.
		total: 45,
	}
	vp := NewViewport(fetcher)

	require.NoError(t, vp.Reload())
	assert.Len(t, vp.Items(), 7)
	assert.False(t, vp.HasMore())
}

func TestLoadMoreAppendsNextPage(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{
			1: makePage(100, defaultViewportLimit),
			2: makePage(60, 5),
		},
		total: 25,
	}
	vp := NewViewport(fetcher)

	require.NoError(t, vp.Reload())
	require.NoError(t, vp.LoadMore())

	assert.Len(t, vp.Items(), defaultViewportLimit+5)
	assert.False(t, vp.HasMore())

	require.Len(t, fetcher.requests, 2)
	assert.Equal(t, 1, fetcher.requests[0].page)
	assert.Equal(t, 2, fetcher.requests[1].page)
}

func TestLoadMoreWithoutMoreIsNoOp(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{1: makePage(100, 3)},
		total: 3,
	}
	vp := NewViewport(fetcher)

	require.NoError(t, vp.Reload())
	require.NoError(t, vp.LoadMore())

	assert.Len(t, fetcher.requests, 1)
}

func TestSetFiltersResetsTheWindow(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{
			1: makePage(100, defaultViewportLimit),
			2: makePage(60, defaultViewportLimit),
		},
		total: 60,
	}
	vp := NewViewport(fetcher)

	require.NoError(t, vp.Reload())
	require.NoError(t, vp.LoadMore())
	require.Len(t, vp.Items(), 2*defaultViewportLimit)

	filters := ListFilters{Category: models.CategoryInventory}
	require.NoError(t, vp.SetFilters(filters))

	// Back to a single first page, fetched under the new filters.
	assert.Len(t, vp.Items(), defaultViewportLimit)
	last := fetcher.requests[len(fetcher.requests)-1]
	assert.Equal(t, 1, last.page)
	assert.Equal(t, models.CategoryInventory, last.filters.Category)
}

func TestLoadMoreSkipsRowsAlreadyInTheWindow(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{
			1: makePage(100, defaultViewportLimit),
			// A new arrival shifted the offsets, so the last row of page
			// one comes back at the top of page two.
			2: makePage(81, 5),
		},
		total: 25,
	}
	vp := NewViewport(fetcher)

	require.NoError(t, vp.Reload())
	require.NoError(t, vp.LoadMore())

	items := vp.Items()
	assert.Len(t, items, defaultViewportLimit+4)

	seen := make(map[uint64]int)
	for _, n := range items {
		seen[n.ID]++
	}
	assert.Equal(t, 1, seen[81])
}

func TestLoadMoreInFlightDropsSecondCall(t *testing.T) {
	gate := make(chan struct{}, 2)
	fetcher := &gatedFetcher{
		gate: gate,
		respond: func(_ ListFilters, page int) []models.Notification {
			if page == 1 {
				return makePage(100, defaultViewportLimit)
			}
			return makePage(60, 5)
		},
		total: 25,
	}
	vp := NewViewport(fetcher)

	gate <- struct{}{}
	require.NoError(t, vp.Reload())

	done := make(chan error, 1)
	go func() { done <- vp.LoadMore() }()
	require.Eventually(t, func() bool { return fetcher.requestCount() == 2 },
		time.Second, 5*time.Millisecond)

	// A second call while the fetch is in flight is dropped, not queued.
	require.NoError(t, vp.LoadMore())
	assert.Equal(t, 2, fetcher.requestCount())

	gate <- struct{}{}
	require.NoError(t, <-done)

	assert.Equal(t, 2, fetcher.requestCount())
	assert.Len(t, vp.Items(), defaultViewportLimit+5)
}

func TestFilterChangeDiscardsInFlightPage(t *testing.T) {
	gate := make(chan struct{}, 2)
	fetcher := &gatedFetcher{
		gate: gate,
		respond: func(filters ListFilters, _ int) []models.Notification {
			if filters.Status == models.StatusUnread {
				return []models.Notification{notif(2, models.StatusUnread, time.Now())}
			}
			return []models.Notification{notif(1, models.StatusArchived, time.Now())}
		},
		total: 1,
	}
	vp := NewViewport(fetcher)

	done := make(chan error, 1)
	go func() { done <- vp.Reload() }()
	require.Eventually(t, func() bool { return fetcher.requestCount() == 1 },
		time.Second, 5*time.Millisecond)

	// Switch filters while the unfiltered first page is still in flight.
	require.NoError(t, vp.SetFilters(ListFilters{Status: models.StatusUnread}))

	gate <- struct{}{} // let the stale fetch land
	gate <- struct{}{} // let the restarted fetch land
	require.NoError(t, <-done)

	require.Equal(t, 2, fetcher.requestCount())
	last := fetcher.lastRequest()
	assert.Equal(t, 1, last.page)
	assert.Equal(t, models.StatusUnread, last.filters.Status)

	// The window holds only the new-filter page; nothing from the stale
	// fetch leaked in.
	items := vp.Items()
	require.Len(t, items, 1)
	assert.Equal(t, uint64(2), items[0].ID)
	assert.Equal(t, models.StatusUnread, items[0].Status)
}

func TestViewportNotifiesOnChange(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[int][]models.Notification{1: makePage(100, 2)},
		total: 2,
	}
	vp := NewViewport(fetcher)

	changes := 0
	vp.OnChange = func() { changes++ }

	require.NoError(t, vp.Reload())
	assert.Equal(t, 1, changes)
}
