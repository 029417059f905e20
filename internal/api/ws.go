package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/planmark/planmark-go/internal/services/pubsub"
)

const eventBufferSize = 64

// events streams every workspace event to one websocket client until it
// disconnects.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	if h.pubsub == nil {
		writeError(w, errUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	subs := make([]*pubsub.Subscriber, 0, len(pubsub.AllTopics))
	for _, topic := range pubsub.AllTopics {
		subs = append(subs, h.pubsub.Subscribe(topic, "", eventBufferSize))
	}
	defer func() {
		for _, sub := range subs {
			h.pubsub.Unsubscribe(sub)
		}
	}()

	merged := make(chan pubsub.Event, eventBufferSize)
	done := make(chan struct{})
	defer close(done)
	for _, sub := range subs {
		go func(ch <-chan pubsub.Event) {
			for ev := range ch {
				select {
				case merged <- ev:
				case <-done:
					return
				}
			}
		}(sub.Channel)
	}

	// The read loop only detects the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.opts.PingInterval)
	defer ping.Stop()

	for {
		select {
		case ev := <-merged:
			if err := conn.SetWriteDeadline(time.Now().Add(h.opts.PingInterval)); err != nil {
				log.Printf("WebSocket write deadline failed: %v", err)
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("WebSocket write failed: %v", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.opts.PingInterval)); err != nil {
				log.Printf("WebSocket ping failed: %v", err)
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}
