package gateway_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qrmenu/api-gateway/internal/gateway"
	"qrmenu/api-gateway/internal/mocks"
	"qrmenu/config"
	"qrmenu/pkg/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var routes = config.GatewayConfig{
	MenuSvcURL:      "http://menu-svc",
	OrderSvcURL:     "http://order-svc",
	FeedSvcURL:      "http://feed-svc",
	AnalyticsSvcURL: "http://analytics-svc",
}

func newRouter(gw *gateway.Gateway) *mux.Router {
	r := mux.NewRouter()
	gw.SetupRoutes(r)
	return r
}

func TestHealthCheck(t *testing.T) {
	gw := gateway.NewGateway(routes, nil, logger.NewNop())

	rr := httptest.NewRecorder()
	gw.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "api-gateway", body["service"])
}

func TestResolve(t *testing.T) {
	const rid = "6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01"
	gw := gateway.NewGateway(routes, nil, logger.NewNop())

	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/api/auth/login", routes.MenuSvcURL, true},
		{"/api/restaurants/" + rid, routes.MenuSvcURL, true},
		{"/api/restaurants/" + rid + "/menu", routes.MenuSvcURL, true},
		{"/api/restaurants/" + rid + "/tables", routes.MenuSvcURL, true},
		{"/api/restaurants/" + rid + "/tables/4/qrcode", routes.MenuSvcURL, true},
		{"/api/restaurants/" + rid + "/uploads/images", routes.MenuSvcURL, true},
		{"/api/restaurants/" + rid + "/tables/4/orders", routes.OrderSvcURL, true},
		{"/api/restaurants/" + rid + "/orders", routes.OrderSvcURL, true},
		{"/api/restaurants/" + rid + "/orders/by-table", routes.OrderSvcURL, true},
		{"/api/orders", routes.OrderSvcURL, true},
		{"/api/orders/abc", routes.OrderSvcURL, true},
		{"/api/devices", routes.OrderSvcURL, true},
		{"/api/devices/d1/carts/" + rid, routes.OrderSvcURL, true},
		{"/api/restaurants/" + rid + "/analytics/top-items", routes.AnalyticsSvcURL, true},
		{"/api/restaurants", "", false},
		{"/api/unknown", "", false},
		{"/api", "", false},
		{"/menu-preview/" + rid, "", false},
	}

	for _, testCase := range tests {
		t.Run(testCase.path, func(t *testing.T) {
			got, ok := gw.Resolve(testCase.path)
			assert.Equal(t, testCase.wantOK, ok)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestRouteHandlerProxies(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := gateway.NewGateway(routes, client, logger.NewNop())

	resp := &http.Response{
		StatusCode: http.StatusCreated,
		Body:       io.NopCloser(strings.NewReader(`{"id":"o-1"}`)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == "http://order-svc/api/orders?x=1" &&
			req.Method == http.MethodPost &&
			req.Header.Get("Authorization") == "Bearer abc"
	})).Return(resp, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/orders?x=1", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer abc")
	rr := httptest.NewRecorder()
	newRouter(gw).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"o-1"}`, rr.Body.String())
}

func TestProxyStripsHopByHopHeaders(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := gateway.NewGateway(routes, client, logger.NewNop())

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(`[]`)),
		Header: http.Header{
			"Content-Type":      []string{"application/json"},
			"Connection":        []string{"keep-alive, X-Backend-Hop"},
			"Keep-Alive":        []string{"timeout=5"},
			"Transfer-Encoding": []string{"chunked"},
			"X-Backend-Hop":     []string{"1"},
		},
	}
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("Connection") == "" &&
			req.Header.Get("Keep-Alive") == "" &&
			req.Header.Get("Upgrade") == "" &&
			req.Header.Get("X-Client-Hop") == "" &&
			req.Header.Get("Authorization") == "Bearer abc"
	})).Return(resp, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/orders/o-1", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.Header.Set("Connection", "Upgrade, X-Client-Hop")
	req.Header.Set("Upgrade", "h2c")
	req.Header.Set("Keep-Alive", "timeout=5")
	req.Header.Set("X-Client-Hop", "1")
	rr := httptest.NewRecorder()
	newRouter(gw).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	for _, h := range []string{"Connection", "Keep-Alive", "Transfer-Encoding", "X-Backend-Hop"} {
		assert.Empty(t, rr.Header().Get(h), h)
	}
}

func TestRouteHandlerUnknownAPI(t *testing.T) {
	gw := gateway.NewGateway(routes, nil, logger.NewNop())

	rr := httptest.NewRecorder()
	newRouter(gw).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouteHandlerBackendDown(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := gateway.NewGateway(routes, client, logger.NewNop())
	client.On("Do", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	rr := httptest.NewRecorder()
	newRouter(gw).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/restaurants/r1/menu", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := routes
	cfg.FrontendDir = dir
	router := newRouter(gateway.NewGateway(cfg, nil, logger.NewNop()))

	tests := []struct {
		path string
		want string
	}{
		{"/menu-preview/6f1c1c52-5d7e-4c53-9a36-1f6f0c1f2a01", "<html>app</html>"},
		{"/dashboard", "<html>app</html>"},
		{"/static/app.js", "console.log(1)"},
	}
	for _, testCase := range tests {
		t.Run(testCase.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, testCase.path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, testCase.want, rr.Body.String())
		})
	}
}

func wsURL(s *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + path
}

func TestWebSocketProxy(t *testing.T) {
	upgrader := websocket.Upgrader{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("table") == "" {
			http.Error(w, "owner token required", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(r.URL.Path+"?"+r.URL.RawQuery))
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			conn.WriteMessage(mt, msg)
		}
	}))
	defer backend.Close()

	cfg := routes
	cfg.FeedSvcURL = backend.URL
	front := httptest.NewServer(newRouter(gateway.NewGateway(cfg, nil, logger.NewNop())))
	defer front.Close()

	t.Run("relays both ways", func(t *testing.T) {
		conn, resp, err := websocket.DefaultDialer.Dial(wsURL(front, "/ws/restaurants/r1/orders?table=3"), nil)
		require.NoError(t, err)
		defer conn.Close()
		assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

		_, first, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "/ws/restaurants/r1/orders?table=3", string(first))

		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
		_, echoed, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, "ping", string(echoed))
	})

	t.Run("passes rejection through", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(front, "/ws/restaurants/r1/orders"), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
