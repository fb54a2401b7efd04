// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/orderlist/internal/models"
)

// Ledger event kinds.
const (
	LedgerAdded   = "added"
	LedgerRemoved = "removed"
)

// Event types sent to clients.
const (
	EventItemAdded           = "item.added"
	EventItemRemoved         = "item.removed"
	EventLedgerUpdated       = "ledger.updated"
	EventNotificationPosted  = "notification.posted"
	EventNotificationCleared = "notification.cleared"
)

// heartbeat keeps idle connections open through proxies.
const heartbeat = 15 * time.Second

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type ledgerEventReq struct {
	kind string
	id   string
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set, the event sequence,
// the pending notification and the ledger.updated throttle timestamp.
// Public methods talk to it over channels.
type Broker struct {
	ledgerMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	ledgerEventCh chan ledgerEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. ledgerThrottle is the minimum spacing
// between two ledger.updated events.
func NewBroker(ledgerThrottle time.Duration) *Broker {
	if ledgerThrottle <= 0 {
		ledgerThrottle = time.Second
	}

	b := &Broker{
		ledgerMin:     ledgerThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		ledgerEventCh: make(chan ledgerEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastLedger time.Time
	var seq uint64
	// pending mirrors the notification slot so late subscribers see it.
	var pending []byte

	broadcast := func(event Event) {
		seq++
		raw, err := frame(seq, event)
		if err != nil {
			return
		}
		switch event.Type {
		case EventNotificationPosted:
			pending = raw
		case EventNotificationCleared:
			pending = nil
		}

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than block the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}
			if pending != nil {
				ch <- pending
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.ledgerEventCh:
			data := map[string]string{"id": req.id}
			switch req.kind {
			case LedgerAdded:
				broadcast(Event{Type: EventItemAdded, Data: data})
			case LedgerRemoved:
				broadcast(Event{Type: EventItemRemoved, Data: data})
			}

			now := time.Now()
			if now.Sub(lastLedger) >= b.ledgerMin {
				lastLedger = now
				broadcast(Event{Type: EventLedgerUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// frame encodes event as one SSE message.
func frame(id uint64, event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload)), nil
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishLedgerEvent publishes an item change and a throttled ledger.updated event.
func (b *Broker) PublishLedgerEvent(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.ledgerEventCh <- ledgerEventReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// PublishNotification forwards a notification slot change to subscribers.
func (b *Broker) PublishNotification(n models.Notification, ok bool) {
	if !ok {
		b.Publish(Event{Type: EventNotificationCleared, Data: map[string]string{}})
		return
	}
	b.Publish(Event{Type: EventNotificationPosted, Data: n})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ping := time.NewTicker(heartbeat)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
