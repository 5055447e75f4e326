package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/rtproxy/pkg/config"
	"github.com/travigo/rtproxy/pkg/realtime/proxies"

	_ "time/tzdata"
)

type nextPassagesResponse struct {
	Realtime bool `json:"realtime"`
	Passages []struct {
		Time       time.Time `json:"time"`
		IsRealTime bool      `json:"is_real_time"`
		RouteRef   *string   `json:"route_ref"`
	} `json:"passages"`
}

func newTestApp(t *testing.T, feedBody string) (*httptest.Server, *atomic.Int32, func(string) (*http.Response, []byte)) {
	t.Helper()

	var calls atomic.Int32
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(feedBody))
	}))
	t.Cleanup(feed.Close)

	cfg, err := config.Parse([]byte(fmt.Sprintf(`
providers:
  - id: tisseo
    service_url: %s/
    timezone: Europe/Paris
    circuit_breaker: {max_fail: 4, reset_timeout: PT60S}
`, feed.URL)))
	require.NoError(t, err)

	manager, err := proxies.NewManager(cfg, nil)
	require.NoError(t, err)

	app := NewApp(manager)

	get := func(target string) (*http.Response, []byte) {
		response, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
		require.NoError(t, err)

		body, err := io.ReadAll(response.Body)
		require.NoError(t, err)

		return response, body
	}

	return feed, &calls, get
}

func TestVersion(t *testing.T) {
	_, _, get := newTestApp(t, "")

	response, body := get("/realtime/version")

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `{"version": "v0.1"}`, string(body))
}

func TestStatuses(t *testing.T) {
	_, _, get := newTestApp(t, "")

	response, body := get("/realtime/status")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `[{
		"id": "tisseo",
		"timeout": 10,
		"circuit_breaker": {"current_state": "closed", "fail_counter": 0, "reset_timeout": 60}
	}]`, string(body))

	response, body = get("/realtime/tisseo/status")
	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, string(body), `"id":"tisseo"`)

	response, _ = get("/realtime/unknown/status")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)
}

func TestNextPassages(t *testing.T) {
	_, calls, get := newTestApp(t, `<timeTable>
		<journey routeId="R1" dateTime="2024-01-01 08:00" realTime="yes"><stop id="42"/></journey>
	</timeTable>`)

	response, body := get("/realtime/tisseo/next_passages?route=R1&stop=42&count=3&datetime=2024-01-01T06:30:00Z")
	require.Equal(t, http.StatusOK, response.StatusCode, string(body))

	var passages nextPassagesResponse
	require.NoError(t, json.Unmarshal(body, &passages))

	assert.True(t, passages.Realtime)
	require.Len(t, passages.Passages, 1)
	assert.True(t, time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC).Equal(passages.Passages[0].Time))
	assert.True(t, passages.Passages[0].IsRealTime)
	assert.Nil(t, passages.Passages[0].RouteRef, "detailed fields are not exposed")
	assert.EqualValues(t, 1, calls.Load())
}

func TestNextPassagesWithoutRealtime(t *testing.T) {
	_, calls, get := newTestApp(t, `<timeTable/>`)

	response, body := get("/realtime/tisseo/next_passages?route=R1&stop=42")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.JSONEq(t, `{"realtime": false, "passages": []}`, string(body))
	assert.EqualValues(t, 1, calls.Load())
}

func TestNextPassagesBadRequests(t *testing.T) {
	_, calls, get := newTestApp(t, `<timeTable/>`)

	for _, target := range []string{
		"/realtime/tisseo/next_passages?route=R1",
		"/realtime/tisseo/next_passages?stop=42",
		"/realtime/tisseo/next_passages?route=&stop=42",
		"/realtime/tisseo/next_passages?route=R1&stop=42&count=many",
		"/realtime/tisseo/next_passages?route=R1&stop=42&count=-1",
		"/realtime/tisseo/next_passages?route=R1&stop=42&datetime=yesterday",
	} {
		response, _ := get(target)
		assert.Equal(t, http.StatusBadRequest, response.StatusCode, target)
	}

	response, _ := get("/realtime/unknown/next_passages?route=R1&stop=42")
	assert.Equal(t, http.StatusNotFound, response.StatusCode)

	assert.EqualValues(t, 0, calls.Load())
}

func TestNextPassagesInvalidDocument(t *testing.T) {
	_, _, get := newTestApp(t, `<timeTable><journey>`)

	response, body := get("/realtime/tisseo/next_passages?route=R1&stop=42")

	assert.Equal(t, http.StatusBadGateway, response.StatusCode)
	assert.Contains(t, string(body), "invalid document")
}
