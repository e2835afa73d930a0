package gateway

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// wsProxy bridges a client websocket to the same path on a backend,
// relaying frames both ways until either side closes.
type wsProxy struct {
	dialer   *websocket.Dialer
	upgrader websocket.Upgrader
	log      *zap.SugaredLogger
}

func newWSProxy(log *zap.SugaredLogger) *wsProxy {
	return &wsProxy{
		dialer: websocket.DefaultDialer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func backendWSURL(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

func (p *wsProxy) serve(w http.ResponseWriter, r *http.Request, base string) {
	target := backendWSURL(base) + r.URL.Path
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	header := http.Header{}
	if v := r.Header.Get("Authorization"); v != "" {
		header.Set("Authorization", v)
	}
	backend, resp, err := p.dialer.DialContext(r.Context(), target, header)
	if err != nil {
		// Pass the backend's handshake rejection through.
		if resp != nil {
			http.Error(w, http.StatusText(resp.StatusCode), resp.StatusCode)
			return
		}
		p.log.Warnw("feed backend unreachable", "target", target, "error", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	client, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		backend.Close()
		return
	}

	var once sync.Once
	closeBoth := func() {
		once.Do(func() {
			client.Close()
			backend.Close()
		})
	}

	var g errgroup.Group
	g.Go(func() error {
		defer closeBoth()
		return relay(client, backend)
	})
	g.Go(func() error {
		defer closeBoth()
		return relay(backend, client)
	})
	if err := g.Wait(); err != nil && !isClosed(err) {
		p.log.Debugw("websocket relay ended", "path", r.URL.Path, "error", err)
	}
}

func relay(dst, src *websocket.Conn) error {
	for {
		messageType, data, err := src.ReadMessage()
		if err != nil {
			if ce, ok := err.(*websocket.CloseError); ok {
				dst.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(ce.Code, ce.Text))
			}
			return err
		}
		if err := dst.WriteMessage(messageType, data); err != nil {
			return err
		}
	}
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
