package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"qrmenu/feed-svc/internal/service"
	"qrmenu/pkg/auth"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
	readLimit  = 4096
)

type Handler struct {
	Hub service.HubInterface

	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
	secret   []byte
}

func NewHandler(hub service.HubInterface, log *zap.SugaredLogger, secret []byte) *Handler {
	return &Handler{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Origins are enforced by the gateway's CORS policy.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:    log,
		secret: secret,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/ws/restaurants/{id}/orders", h.streamOrders).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "healthy",
		"service":   "feed-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) streamOrders(w http.ResponseWriter, r *http.Request) {
	restaurantID := mux.Vars(r)["id"]
	q := r.URL.Query()

	filter := service.Filter{DeviceID: q.Get("device")}
	if raw := q.Get("table"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "table number must be a positive integer", http.StatusBadRequest)
			return
		}
		filter.TableNumber = &n
	}
	if filter.All() {
		if _, err := auth.Authorize(r, h.secret, restaurantID); err != nil {
			auth.WriteError(w, err)
			return
		}
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.Debugw("websocket upgrade failed", "error", err)
		return
	}
	ch, cancel := h.Hub.Subscribe(restaurantID, filter)
	defer cancel()

	h.log.Infow("subscriber connected", "restaurant_id", restaurantID, "remote", r.RemoteAddr)
	serve(conn, ch)
	h.log.Infow("subscriber disconnected", "restaurant_id", restaurantID, "remote", r.RemoteAddr)
}

// serve pumps events to conn until the client goes away. Incoming messages
// are only read to process pongs and close frames.
func serve(conn *websocket.Conn, events <-chan []byte) {
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(readLimit)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case data, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
