package cloudbeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchReservations_Success(t *testing.T) {
	var gotAuth, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query().Get("includeGuestsDetails")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[{"reservationID":"R1","guestName":"Ada"}]}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIBaseURL: server.URL}, zap.NewNop())
	reservations, err := c.FetchReservations(context.Background(), "tok", "P1")
	require.NoError(t, err)
	require.Len(t, reservations, 1)
	assert.Equal(t, "R1", reservations[0]["reservationID"])
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "true", gotQuery)
}

func TestFetchReservations_RateLimitedRetriesThenFails(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient(Config{APIBaseURL: server.URL}, zap.NewNop())
	c.http.SetRetryAfter(nil).SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	_, err := c.FetchReservations(context.Background(), "tok", "P1")
	require.Error(t, err)

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusTooManyRequests, remoteErr.Status)

	var rateErr *RateLimitError
	assert.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 1+maxRetries, calls)
}

func TestFetchReservations_RateLimitRecovers(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIBaseURL: server.URL}, zap.NewNop())
	c.http.SetRetryAfter(nil).SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)

	reservations, err := c.FetchReservations(context.Background(), "tok", "P1")
	require.NoError(t, err)
	assert.Empty(t, reservations)
	assert.Equal(t, 2, calls)
}

func TestFetchReservations_APIFailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid property"}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIBaseURL: server.URL}, zap.NewNop())
	_, err := c.FetchReservations(context.Background(), "tok", "bogus")

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Contains(t, remoteErr.Error(), "invalid property")
}

func TestFetchProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1.3/oauth/metadata", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"propertyID":"P1","propertyName":"Seaside","propertyTimezone":"America/Denver"}}`))
	}))
	defer server.Close()

	c := NewClient(Config{APIBaseURL: server.URL}, zap.NewNop())
	props, err := c.FetchProperties(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, PropertyInfo{RemoteID: "P1", Name: "Seaside", Timezone: "America/Denver"}, props[0])
}

func TestRetryDelay(t *testing.T) {
	// No response available: first-attempt backoff.
	d, err := retryDelay(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, baseRetryDelay, d)
}

func TestExtractPhoneLast4(t *testing.T) {
	tests := []struct {
		phone string
		want  string
	}{
		{"+1 (555) 123-4567", "4567"},
		{"555.987.6543", "6543"},
		{"123", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPhoneLast4(tt.phone))
		})
	}
}
