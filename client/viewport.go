package client

import (
	"sync"

	"storefront_backend/internal/models"
	"storefront_backend/internal/services/dto"
)

const defaultViewportLimit = 20

// Fetcher is the page-load dependency of the viewport. Satisfied by
// *RestClient.
type Fetcher interface {
	FetchNotifications(filters ListFilters, page, limit int) (*dto.NotificationListResponse, error)
}

// Viewport is the paginated list view of the notification center. It
// tracks the loaded window, the active filters, and whether more pages
// exist. Loads are single-flight: a load issued while another is in
// progress is dropped, not queued.
type Viewport struct {
	fetch Fetcher

	mu      sync.Mutex
	filters ListFilters
	items   []models.Notification
	page    int
	limit   int
	total   int64
	hasMore bool
	loading bool
	// epoch advances on every filter change; a fetch started under an
	// older epoch discards its page instead of writing it back.
	epoch int

	OnChange func()
}

func NewViewport(fetch Fetcher) *Viewport {
	return &Viewport{
		fetch: fetch,
		limit: defaultViewportLimit,
	}
}

func (v *Viewport) Items() []models.Notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Notification, len(v.items))
	copy(out, v.items)
	return out
}

func (v *Viewport) HasMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hasMore
}

func (v *Viewport) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *Viewport) Total() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.total
}

// SetFilters replaces the active filters and resets the window to the
// first page. If a fetch under the old filters is still in flight, its
// page is discarded when it lands and the first page of the new filters
// is fetched in its place.
func (v *Viewport) SetFilters(filters ListFilters) error {
	v.mu.Lock()
	v.epoch++
	v.filters = filters
	v.items = nil
	v.page = 0
	v.hasMore = false
	v.mu.Unlock()

	return v.load(1, false)
}

// Reload re-fetches the first page under the current filters.
func (v *Viewport) Reload() error {
	return v.load(1, false)
}

// LoadMore appends the next page. A no-op when everything is loaded.
func (v *Viewport) LoadMore() error {
	v.mu.Lock()
	if !v.hasMore {
		v.mu.Unlock()
		return nil
	}
	next := v.page + 1
	v.mu.Unlock()

	return v.load(next, true)
}

func (v *Viewport) load(page int, appendPage bool) error {
	v.mu.Lock()
	if v.loading {
		// The in-flight fetch restarts itself if the filters changed
		// underneath it, so dropping this call is safe.
		v.mu.Unlock()
		return nil
	}
	v.loading = true
	epoch := v.epoch
	filters := v.filters
	limit := v.limit
	v.mu.Unlock()

	result, err := v.fetch.FetchNotifications(filters, page, limit)

	v.mu.Lock()
	v.loading = false
	if epoch != v.epoch {
		// Filters changed while this fetch was in flight. The page
		// belongs to the old filters, so throw it away and fetch the
		// first page of the new ones.
		v.mu.Unlock()
		return v.load(1, false)
	}
	if err != nil {
		v.mu.Unlock()
		return err
	}

	if appendPage {
		// Records created between page loads shift offsets, so a row
		// from the previous page can come back on this one.
		seen := make(map[uint64]struct{}, len(v.items))
		for i := range v.items {
			seen[v.items[i].ID] = struct{}{}
		}
		for _, n := range result.Notifications {
			if _, dup := seen[n.ID]; dup {
				continue
			}
			v.items = append(v.items, n)
		}
	} else {
		v.items = result.Notifications
	}
	v.page = page
	v.total = result.Total
	// A short page means the window is exhausted even if the total
	// suggests otherwise; records may have been archived since counting.
	v.hasMore = len(result.Notifications) == limit
	cb := v.OnChange
	v.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}
