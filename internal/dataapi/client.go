// Package dataapi is the HTTP client for the remote property-management
// data service, the source of truth the planning grid reconciles
// against.
package dataapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"planboard/internal/models"
	"planboard/internal/selection"
)

// Client calls the data service's room and reservation endpoints.
// Room reads may be served from an optional Redis cache; reservation
// reads always hit the service, they are the truth the store refreshes
// from. Writes go through a rate limiter so a burst of confirmations
// cannot hammer the service.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	redis    *redis.Client
	cacheTTL time.Duration
	limiter  *rate.Limiter
}

// NewClient constructs a client for the given base URL and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

// UseRedisCache configures optional Redis caching for room reads.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseWriteLimit throttles write endpoints to r requests per second with
// the given burst.
func (c *Client) UseWriteLimit(r float64, burst int) {
	c.limiter = rate.NewLimiter(rate.Limit(r), burst)
}

// FetchRooms returns the room inventory.
func (c *Client) FetchRooms(ctx context.Context) ([]models.Room, error) {
	endpoint := c.baseURL + "/api/v1/rooms"
	var wrap struct {
		Rooms []models.Room `json:"rooms"`
	}

	if c.readCache(ctx, "rooms", &wrap) {
		return wrap.Rooms, nil
	}

	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, "rooms", wrap)
	return wrap.Rooms, nil
}

// FetchReservations returns all reservations. Never cached.
func (c *Client) FetchReservations(ctx context.Context) ([]models.Reservation, error) {
	endpoint := c.baseURL + "/api/v1/reservations"
	var wrap struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	return wrap.Reservations, nil
}

// UpdateReservation persists a single changed reservation.
func (c *Client) UpdateReservation(ctx context.Context, r models.Reservation) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/api/v1/reservations/%d", c.baseURL, r.ID)
	return c.doJSON(ctx, http.MethodPut, endpoint, r, nil)
}

// UpdateMultipleReservations persists a group batch in one call. The
// service applies the batch atomically; any error means nothing was
// written and the caller must treat the batch as fully failed.
func (c *Client) UpdateMultipleReservations(ctx context.Context, reservations []models.Reservation) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	endpoint := c.baseURL + "/api/v1/reservations/batch"
	body := struct {
		Reservations []models.Reservation `json:"reservations"`
	}{Reservations: reservations}
	return c.doJSON(ctx, http.MethodPut, endpoint, body, nil)
}

// CreateMultipleReservations creates bookings from selection proposals
// and returns the created records with service-assigned ids.
func (c *Client) CreateMultipleReservations(ctx context.Context, proposals []selection.Proposal) ([]models.Reservation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	endpoint := c.baseURL + "/api/v1/reservations"
	body := struct {
		Proposals []selection.Proposal `json:"proposals"`
	}{Proposals: proposals}
	var wrap struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &wrap); err != nil {
		return nil, err
	}
	return wrap.Reservations, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, cacheKey(key)).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(key), data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func cacheKey(key string) string {
	return "planboard:" + key
}
