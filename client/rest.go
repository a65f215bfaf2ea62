package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"storefront_backend/internal/models"
	"storefront_backend/internal/repositories"
	"storefront_backend/internal/services/dto"
)

// ListFilters narrows a notification window fetch. Zero values mean
// "no filter".
type ListFilters struct {
	Status        models.NotificationStatus
	ExcludeStatus models.NotificationStatus
	Category      models.NotificationCategory
	Priority      models.NotificationPriority
	Type          models.NotificationType
}

func (f ListFilters) query(page, limit int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.ExcludeStatus != "" {
		q.Set("exclude_status", string(f.ExcludeStatus))
	}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.Priority != "" {
		q.Set("priority", string(f.Priority))
	}
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	return q
}

// RestClient is the fetch side of the admin panel: initial load,
// pagination, and the recovery reads after a failed optimistic
// mutation.
type RestClient struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func NewRestClient(baseURL string, token func() string) *RestClient {
	return &RestClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

func (c *RestClient) do(method, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token())

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request %s %s failed with status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// FetchNotifications loads one page of the recipient's window.
func (c *RestClient) FetchNotifications(filters ListFilters, page, limit int) (*dto.NotificationListResponse, error) {
	var resp dto.NotificationListResponse
	if err := c.do(http.MethodGet, "/api/v1/notifications", filters.query(page, limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchUnreadCount reads the authoritative counter.
func (c *RestClient) FetchUnreadCount() (int64, error) {
	var payload dto.UnreadCountPayload
	if err := c.do(http.MethodGet, "/api/v1/notifications/unread-count", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Count, nil
}

// FetchStats loads the dashboard counters.
func (c *RestClient) FetchStats() (*repositories.NotificationStats, error) {
	var stats repositories.NotificationStats
	if err := c.do(http.MethodGet, "/api/v1/notifications/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// MarkRead mutates over REST, for use when no live session is up.
func (c *RestClient) MarkRead(id uint64) (*dto.MutationResponse, error) {
	return c.mutate(fmt.Sprintf("/api/v1/notifications/%d/read", id))
}

func (c *RestClient) Archive(id uint64) (*dto.MutationResponse, error) {
	return c.mutate(fmt.Sprintf("/api/v1/notifications/%d/archive", id))
}

func (c *RestClient) Dismiss(id uint64) (*dto.MutationResponse, error) {
	return c.mutate(fmt.Sprintf("/api/v1/notifications/%d/dismiss", id))
}

func (c *RestClient) mutate(path string) (*dto.MutationResponse, error) {
	var resp dto.MutationResponse
	if err := c.do(http.MethodPut, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
