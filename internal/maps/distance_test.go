package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/distancematrix/json", r.URL.Path)
		assert.Equal(t, "now", r.URL.Query().Get("departure_time"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDistance_PrefersTrafficDuration(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{
		"status": "OK",
		"rows": [{"elements": [{
			"status": "OK",
			"duration": {"text": "20 mins", "value": 1200},
			"duration_in_traffic": {"text": "28 mins", "value": 1680},
			"distance": {"text": "12.4 km", "value": 12400}
		}]}]
	}`)

	c := NewWithBaseURL("test-key", srv.URL)
	res, err := c.Distance(context.Background(), "40.7,-74.0", "123 Main St")
	require.NoError(t, err)
	assert.Equal(t, "28 mins", res.DurationText)
	assert.Equal(t, 1680, res.DurationSeconds)
	assert.Equal(t, "12.4 km", res.DistanceText)
}

func TestDistance_FallsBackToPlainDuration(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{
		"status": "OK",
		"rows": [{"elements": [{
			"status": "OK",
			"duration": {"text": "20 mins", "value": 1200}
		}]}]
	}`)

	c := NewWithBaseURL("test-key", srv.URL)
	res, err := c.Distance(context.Background(), "40.7,-74.0", "123 Main St")
	require.NoError(t, err)
	assert.Equal(t, "20 mins", res.DurationText)
	assert.Empty(t, res.DistanceText)
}

func TestDistance_MissingParams(t *testing.T) {
	c := NewWithBaseURL("test-key", "http://localhost:1")

	_, err := c.Distance(context.Background(), "", "123 Main St")
	assert.ErrorIs(t, err, ErrMissingLocation)

	_, err = c.Distance(context.Background(), "40.7,-74.0", "")
	assert.ErrorIs(t, err, ErrMissingLocation)
}

func TestDistance_TopLevelStatusRejected(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{"status": "REQUEST_DENIED", "rows": []}`)

	c := NewWithBaseURL("bad-key", srv.URL)
	_, err := c.Distance(context.Background(), "40.7,-74.0", "123 Main St")
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}

func TestDistance_NoRouteIsUnavailable(t *testing.T) {
	srv := stubServer(t, http.StatusOK, `{
		"status": "OK",
		"rows": [{"elements": [{"status": "ZERO_RESULTS"}]}]
	}`)

	c := NewWithBaseURL("test-key", srv.URL)
	_, err := c.Distance(context.Background(), "40.7,-74.0", "somewhere over the rainbow")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDistance_HTTPErrorStatus(t *testing.T) {
	srv := stubServer(t, http.StatusInternalServerError, `boom`)

	c := NewWithBaseURL("test-key", srv.URL)
	_, err := c.Distance(context.Background(), "40.7,-74.0", "123 Main St")
	assert.ErrorIs(t, err, ErrUpstreamStatus)
}
