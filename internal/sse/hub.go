package sse

import (
	"context"
	"sync"

	"classlive/internal/model"
)

type Client struct {
	UserID string
	Ch     chan model.PushNotification
}

// Hub routes push notifications to the private channel of each connected
// user. A user may hold several clients at once (multiple tabs); every one of
// them receives the push.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	push       chan model.PushNotification
	users      map[string]map[*Client]struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		push:       make(chan model.PushNotification, 64),
		users:      make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Push(notification model.PushNotification) {
	h.push <- notification
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case notification := <-h.push:
			h.pushToUser(notification)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[client.UserID] == nil {
		h.users[client.UserID] = make(map[*Client]struct{})
	}
	h.users[client.UserID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.users[client.UserID]
	if clients == nil {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.users, client.UserID)
	}
}

func (h *Hub) pushToUser(notification model.PushNotification) {
	h.mu.RLock()
	clients := h.users[notification.UserID]
	h.mu.RUnlock()
	for client := range clients {
		select {
		case client.Ch <- notification:
		default:
			// Drop if the client is too slow.
		}
	}
}
