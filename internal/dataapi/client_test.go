package dataapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/internal/models"
	"planboard/internal/selection"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestClient_FetchRooms(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v1/rooms", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rooms": []models.Room{{ID: 101, Number: "101", Category: "double", Rate: 80}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	rooms, err := client.FetchRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "101", rooms[0].Number)
	assert.Equal(t, 1, calls)
}

func TestClient_FetchRoomsCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rooms": []models.Room{{ID: 101, Number: "101"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	client.UseRedisCache(rdb, time.Minute)

	for i := 0; i < 3; i++ {
		rooms, err := client.FetchRooms(context.Background())
		require.NoError(t, err)
		assert.Len(t, rooms, 1)
	}
	// Second and third reads came from the cache.
	assert.Equal(t, 1, calls)
}

func TestClient_FetchReservationsNeverCached(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"reservations": []models.Reservation{{ID: 1, RoomID: 101}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	client.UseRedisCache(rdb, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := client.FetchReservations(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, calls)
}

func TestClient_UpdateReservation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/reservations/1", r.URL.Path)

		var got models.Reservation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, day(2026, 3, 12), got.CheckIn.UTC())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.UpdateReservation(context.Background(), models.Reservation{
		ID: 1, RoomID: 101,
		CheckIn: day(2026, 3, 12), CheckOut: day(2026, 3, 15),
	})
	assert.NoError(t, err)
}

func TestClient_UpdateMultipleReservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reservations/batch", r.URL.Path)

		var body struct {
			Reservations []models.Reservation `json:"reservations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Len(t, body.Reservations, 2)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.UpdateMultipleReservations(context.Background(), []models.Reservation{
		{ID: 1}, {ID: 2},
	})
	assert.NoError(t, err)
}

func TestClient_CreateMultipleReservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body struct {
			Proposals []selection.Proposal `json:"proposals"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Proposals, 1)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"reservations": []models.Reservation{{
				ID: 42, RoomID: body.Proposals[0].RoomID,
				CheckIn: body.Proposals[0].CheckIn, CheckOut: body.Proposals[0].CheckOut,
			}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	created, err := client.CreateMultipleReservations(context.Background(), []selection.Proposal{{
		Ref: "abc", RoomID: 103,
		CheckIn: day(2026, 3, 5), CheckOut: day(2026, 3, 8),
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, int64(42), created[0].ID)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "conflict", http.StatusConflict)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.UpdateReservation(context.Background(), models.Reservation{ID: 1})
	assert.ErrorContains(t, err, "http 409")

	_, err = client.FetchReservations(context.Background())
	assert.Error(t, err)
}
