package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ poller.Fetcher = (*Client)(nil)

func TestDrivers(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/drivers", r.URL.Path)
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]interface{}{
			"drivers": []map[string]interface{}{
				{"userId": "d1", "status": "available", "vehicleType": "tricycle"},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	drivers, err := c.Drivers(context.Background(), driver.Filter{VehicleType: driver.VehicleTricycle})
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "d1", drivers[0].UserID)
	assert.Equal(t, "vehicleType=tricycle", gotQuery)

	_, err = c.FetchDrivers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestLoginStoresToken(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			var req dto.LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "juan@example.com", req.Email)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"token": "tok-1",
				"user":  map[string]interface{}{"id": "u1", "role": "driver"},
			})
		case "/driver/update":
			authHeader = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true,
				"driver":  map[string]interface{}{"userId": "u1", "status": "occupied"},
			})
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, profile, err := c.Login(context.Background(), "juan@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, "u1", profile.ID)

	rec, err := c.Publish(context.Background(), dto.PublishStatusRequest{Status: "occupied", VehicleType: "tricycle"})
	require.NoError(t, err)
	assert.Equal(t, driver.StatusOccupied, rec.Status)
	assert.Equal(t, "Bearer tok-1", authHeader)
}

func TestAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"Only drivers can publish status","code":"FORBIDDEN"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok"))
	_, err := c.Publish(context.Background(), dto.PublishStatusRequest{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "FORBIDDEN", apiErr.Code)
	assert.Equal(t, "Only drivers can publish status", apiErr.Message)
}

func TestAuthenticatedCallWithoutToken(t *testing.T) {
	c := New("http://127.0.0.1:0")
	_, err := c.Profile(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestNonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Fares(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}
