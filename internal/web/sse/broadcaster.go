// Package sse pushes change notifications to open catwalk pages.
package sse

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// WriteTimeout bounds a single write to a subscriber.
	WriteTimeout = 2 * time.Second

	// ClientBuffer is the number of events queued per subscriber before it is dropped.
	ClientBuffer = 16
)

// Event types sent to subscribers.
const (
	EventConnected = "connected"
	EventCatAdded  = "cat_added"
	EventWalk      = "walk"
	EventReset     = "reset"
)

// Event is one notification. Subscribers re-fetch state on receipt.
type Event struct {
	Type       string `json:"type"`
	CatID      int64  `json:"cat_id,omitempty"`
	Transition string `json:"transition,omitempty"`
}

// Client is a connected subscriber. Only the goroutine serving the
// subscriber's stream reads its queue and writes to the connection.
type Client struct {
	Done chan struct{}
	ID   string
	send chan []byte
}

// Messages returns the subscriber's queue of encoded events.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Broadcaster tracks subscribers and fans events out to them.
type Broadcaster struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]*Client),
	}
}

// AddClient registers a new subscriber.
func (b *Broadcaster) AddClient() *Client {
	client := &Client{
		ID:   uuid.NewString(),
		Done: make(chan struct{}),
		send: make(chan []byte, ClientBuffer),
	}

	b.mu.Lock()
	b.clients[client.ID] = client
	count := len(b.clients)
	b.mu.Unlock()

	log.Debug().Str("client", client.ID).Int("subscribers", count).Msg("Subscriber connected")
	return client
}

// RemoveClient unregisters a subscriber and closes its Done channel.
func (b *Broadcaster) RemoveClient(client *Client) {
	b.remove(client.ID)
}

func (b *Broadcaster) remove(id string) {
	b.mu.Lock()
	client, exists := b.clients[id]
	if exists {
		delete(b.clients, id)
		close(client.Done)
	}
	count := len(b.clients)
	b.mu.Unlock()

	if exists {
		log.Debug().Str("client", id).Int("subscribers", count).Msg("Subscriber removed")
	}
}

// Publish queues ev for every subscriber without blocking.
// Subscribers whose queue is full are dropped.
func (b *Broadcaster) Publish(ev Event) {
	message, err := encode(ev)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal event")
		return
	}

	var full []string
	b.mu.RLock()
	for id, c := range b.clients {
		select {
		case c.send <- message:
		default:
			full = append(full, id)
		}
	}
	b.mu.RUnlock()

	for _, id := range full {
		log.Warn().Str("client", id).Int("buffer", ClientBuffer).Msg("Subscriber too slow, dropping")
		b.remove(id)
	}
}

// ClientCount returns the number of subscribers.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// ServeHTTP streams events until the request context ends or the subscriber is dropped.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := b.AddClient()
	defer b.RemoveClient(client)

	rc := http.NewResponseController(w)
	hello, _ := encode(Event{Type: EventConnected})
	if err := writeMessage(w, rc, flusher, hello); err != nil {
		log.Debug().Str("client", client.ID).Err(err).Msg("Subscriber write failed")
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.Done:
			return
		case msg := <-client.send:
			if err := writeMessage(w, rc, flusher, msg); err != nil {
				log.Debug().Str("client", client.ID).Err(err).Msg("Subscriber write failed")
				return
			}
		}
	}
}

func encode(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("data: %s\n\n", payload)), nil
}

func writeMessage(w http.ResponseWriter, rc *http.ResponseController, flusher http.Flusher, msg []byte) error {
	if err := rc.SetWriteDeadline(time.Now().Add(WriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
