package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"qrmenu/config"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Gateway struct {
	config config.GatewayConfig
	client HTTPClient
	log    *zap.SugaredLogger
	ws     *wsProxy
}

func NewGateway(cfg config.GatewayConfig, client HTTPClient, log *zap.SugaredLogger) *Gateway {
	return &Gateway{
		config: cfg,
		client: client,
		log:    log,
		ws:     newWSProxy(log),
	}
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Resolve picks the backend base URL for an /api path.
func (g *Gateway) Resolve(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return "", false
	}
	switch parts[1] {
	case "auth":
		return g.config.MenuSvcURL, true
	case "orders", "devices":
		return g.config.OrderSvcURL, true
	case "restaurants":
		if len(parts) < 3 || parts[2] == "" {
			return "", false
		}
		if len(parts) >= 4 {
			switch parts[3] {
			case "analytics":
				return g.config.AnalyticsSvcURL, true
			case "orders":
				return g.config.OrderSvcURL, true
			case "tables":
				if len(parts) >= 6 && parts[5] == "orders" {
					return g.config.OrderSvcURL, true
				}
			}
		}
		return g.config.MenuSvcURL, true
	}
	return "", false
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	g.log.Debugw("proxy", "method", r.Method, "path", r.URL.Path, "target", targetURL)

	url := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, url, r.Body)
	if err != nil {
		g.log.Errorw("failed to create proxy request", "url", url, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	copyHeader(req.Header, r.Header)
	req.ContentLength = r.ContentLength

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warnw("backend unreachable", "target", targetURL, "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	copyHeader(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		g.log.Warnw("failed to copy response", "target", targetURL, "error", err)
	}
}

// hopHeaders apply to a single connection and are not forwarded.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// copyHeader copies src into dst without hop-by-hop headers, including any
// named by src's Connection header.
func copyHeader(dst, src http.Header) {
	for k, v := range src {
		dst[k] = append([]string(nil), v...)
	}
	for _, value := range src.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				dst.Del(name)
			}
		}
	}
	for _, h := range hopHeaders {
		dst.Del(h)
	}
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := g.Resolve(r.URL.Path)
	if !ok {
		g.log.Debugw("unmatched api route", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "API route not found", http.StatusNotFound)
		return
	}
	g.ProxyRequest(w, r, target)
}

func (g *Gateway) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	g.ws.serve(w, r, g.config.FeedSvcURL)
}

// AppHandler serves the single-page app shell for every non-API path,
// including /menu-preview/{id}.
func (g *Gateway) AppHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(g.config.FrontendDir, "index.html"))
}

func (g *Gateway) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.PathPrefix("/ws/").HandlerFunc(g.WebSocketHandler).Methods("GET")
	r.PathPrefix("/api/").HandlerFunc(g.RouteHandler)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(g.config.FrontendDir))))
	r.PathPrefix("/").HandlerFunc(g.AppHandler)
}
