package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dom/mama-respira/internal/domain"
	"github.com/dom/mama-respira/internal/metrics"
	"go.uber.org/zap"
)

// Hub tracks the open connections of every user and delivers realtime
// events to them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliver    chan Envelope
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits, or by Stop if Run never started
	started    bool
	stopped    bool
	broker     Broker
	log        *zap.Logger
	mu         sync.RWMutex
}

type HubOption func(*Hub)

// WithBroker routes events through b so other instances see them too.
func WithBroker(b Broker) HubOption {
	return func(h *Hub) {
		h.broker = b
	}
}

func NewHub(log *zap.Logger, opts ...HubOption) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan Envelope, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		log:        log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run processes registrations and deliveries until Stop is called. Only
// the first call does anything; a Run after Stop returns immediately.
func (h *Hub) Run() {
	h.mu.Lock()
	if h.started || h.stopped {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.mu.Unlock()

	defer close(h.done)

	subCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if h.broker != nil {
		go h.subscribe(subCtx)
	}

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for _, set := range h.clients {
				for client := range set {
					client.Close()
				}
			}
			h.clients = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			h.mu.Unlock()
			metrics.RealtimeConnected()

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.userID]; ok && set[client] {
				delete(set, client)
				if len(set) == 0 {
					delete(h.clients, client.userID)
				}
				client.Close()
				metrics.RealtimeDisconnected()
			}
			h.mu.Unlock()

		case env := <-h.deliver:
			h.deliverLocal(env)
		}
	}
}

// subscribe keeps the broker subscription alive until the hub stops.
func (h *Hub) subscribe(ctx context.Context) {
	for {
		err := h.broker.Subscribe(ctx, func(env Envelope) {
			select {
			case h.deliver <- env:
			case <-ctx.Done():
			}
		})
		if ctx.Err() != nil {
			return
		}
		h.log.Warn("realtime subscription ended, retrying", zap.Error(err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return
		}
	}
}

// Stop closes every connection and blocks until Run has returned. A hub
// that never ran is marked done right away.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	started := h.started
	h.mu.Unlock()

	close(h.stop)
	if !started {
		close(h.done)
		return
	}
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister is safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Notify sends an event to every open connection of userID. Delivery is
// best effort: users without connections simply miss it.
func (h *Hub) Notify(ctx context.Context, userID string, eventType domain.EventType, payload any) {
	msg, err := NewMessage(MessageType(eventType), payload)
	if err != nil {
		h.log.Error("encode realtime event", zap.String("type", string(eventType)), zap.Error(err))
		return
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("encode realtime frame", zap.Error(err))
		return
	}
	env := Envelope{UserID: userID, Frame: frame}

	if h.broker != nil {
		err := h.broker.Publish(ctx, env)
		if err == nil {
			return
		}
		h.log.Warn("publish realtime event, delivering locally", zap.Error(err))
	}

	select {
	case h.deliver <- env:
	case <-h.done:
	case <-ctx.Done():
	}
}

// Connections reports how many sockets userID has open on this instance.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) deliverLocal(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[env.UserID]
	if len(set) == 0 {
		return
	}

	var msg struct {
		Type string `json:"type"`
	}
	_ = json.Unmarshal(env.Frame, &msg)
	metrics.RecordRealtimeEvent(msg.Type)

	for client := range set {
		if !client.trySend(env.Frame) {
			h.log.Debug("realtime frame dropped", zap.String("user_id", env.UserID), zap.String("type", msg.Type))
		}
	}
}
