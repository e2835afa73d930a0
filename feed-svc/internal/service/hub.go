package service

import (
	"encoding/json"
	"sync"

	"qrmenu/pkg/events"

	"github.com/prometheus/client_golang/prometheus"
)

const subscriberBuffer = 64

// Filter selects the events one subscriber receives. With neither a table
// nor a device set the subscriber sees the whole restaurant. With both set
// an event matching either one is delivered, so a diner sees their table and
// their own orders.
type Filter struct {
	TableNumber *int
	DeviceID    string
}

func (f Filter) All() bool {
	return f.TableNumber == nil && f.DeviceID == ""
}

func (f Filter) Match(e events.Event) bool {
	if f.All() {
		return true
	}
	if f.DeviceID != "" && e.DeviceID == f.DeviceID {
		return true
	}
	if f.TableNumber == nil {
		return false
	}
	if e.TableNumber != nil {
		return *e.TableNumber == *f.TableNumber
	}
	// A device cleanup names order ids without a table; any table view may
	// hold some of them.
	return e.Type == events.OrdersCleared
}

type subscriber struct {
	filter Filter
}

// Hub fans events out to websocket subscribers per restaurant. Broadcast
// never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]subscriber

	delivered *prometheus.CounterVec
	dropped   prometheus.Counter
	active    prometheus.Gauge
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[chan []byte]subscriber),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qrmenu",
			Subsystem: "feed",
			Name:      "events_delivered_total",
			Help:      "Events written to subscriber buffers, by event type.",
		}, []string{"type"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "qrmenu",
			Subsystem: "feed",
			Name:      "events_dropped_total",
			Help:      "Events skipped because a subscriber buffer was full.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "qrmenu",
			Subsystem: "feed",
			Name:      "subscribers",
			Help:      "Open websocket subscriptions.",
		}),
	}
}

func (h *Hub) Collectors() []prometheus.Collector {
	return []prometheus.Collector{h.delivered, h.dropped, h.active}
}

func (h *Hub) Broadcast(e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch, sub := range h.subs[e.RestaurantID] {
		if !sub.filter.Match(e) {
			continue
		}
		select {
		case ch <- data:
			h.delivered.WithLabelValues(e.Type).Inc()
		default:
			h.dropped.Inc()
		}
	}
}

// Subscribe registers a buffered channel for restaurantID. The returned
// cancel func unregisters and closes it; call it exactly once.
func (h *Hub) Subscribe(restaurantID string, filter Filter) (<-chan []byte, func()) {
	ch := make(chan []byte, subscriberBuffer)
	h.mu.Lock()
	if _, ok := h.subs[restaurantID]; !ok {
		h.subs[restaurantID] = make(map[chan []byte]subscriber)
	}
	h.subs[restaurantID][ch] = subscriber{filter: filter}
	h.mu.Unlock()
	h.active.Inc()

	return ch, func() {
		h.mu.Lock()
		if set, ok := h.subs[restaurantID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, restaurantID)
			}
		}
		h.mu.Unlock()
		h.active.Dec()
		close(ch)
	}
}

func (h *Hub) Subscribers(restaurantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[restaurantID])
}
