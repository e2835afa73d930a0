package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpapi "qrmenu/feed-svc/internal/api/http"
	"qrmenu/feed-svc/internal/service"
	"qrmenu/pkg/auth"
	"qrmenu/pkg/events"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restID = "6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01"

var secret = []byte("feed-secret")

func newServer(t *testing.T) (*httptest.Server, *service.Hub) {
	t.Helper()
	hub := service.NewHub()
	m := metrics.NewHTTP("feed-svc")
	require.NoError(t, m.Register(hub.Collectors()...))
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.NewHandler(hub, logger.NewNop(), secret), m))
	t.Cleanup(srv.Close)
	return srv, hub
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestStreamOrders(t *testing.T) {
	token, err := auth.GenToken("owner-1", restID, secret, time.Hour)
	require.NoError(t, err)
	otherToken, err := auth.GenToken("owner-2", "other", secret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name     string
		query    string
		wantCode int
	}{
		{name: "table view is public", query: "?table=2", wantCode: http.StatusSwitchingProtocols},
		{name: "device view is public", query: "?device=dev-1", wantCode: http.StatusSwitchingProtocols},
		{name: "owner view with token", query: "?token=" + token, wantCode: http.StatusSwitchingProtocols},
		{name: "owner view without token", wantCode: http.StatusUnauthorized},
		{name: "owner view for another restaurant", query: "?token=" + otherToken, wantCode: http.StatusForbidden},
		{name: "bad table", query: "?table=zero", wantCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			srv, _ := newServer(t)

			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/restaurants/"+restID+"/orders"+testCase.query), nil)
			require.NotNil(t, resp)
			assert.Equal(t, testCase.wantCode, resp.StatusCode)
			if testCase.wantCode == http.StatusSwitchingProtocols {
				require.NoError(t, err)
				conn.Close()
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestStreamOrdersDeliversMatchingEvents(t *testing.T) {
	srv, hub := newServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/restaurants/"+restID+"/orders?table=2"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers(restID) == 1 }, 2*time.Second, 10*time.Millisecond)

	three, two := 3, 2
	hub.Broadcast(events.Event{Type: events.OrderPlaced, RestaurantID: restID, TableNumber: &three,
		Order: &events.OrderSnapshot{ID: "other-table"}})
	hub.Broadcast(events.Event{Type: events.OrderPlaced, RestaurantID: restID, TableNumber: &two,
		Order: &events.OrderSnapshot{ID: "mine", Status: "placed"}})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var e events.Event
	require.NoError(t, json.Unmarshal(data, &e))
	assert.Equal(t, "mine", e.Order.ID)
	assert.Equal(t, events.OrderPlaced, e.Type)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers(restID) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
