package relay

import (
	"encoding/json"

	"agency_chat/internal/domain"
	"agency_chat/pkg/logger"
)

// Broadcaster рассылает событие всем подключенным слушателям.
type Broadcaster interface {
	Broadcast(event *domain.ChatEvent)
}

// Hub держит множество активных соединений и ведет глобальную
// рассылку. Единственный цикл Run задает общий порядок доставки.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	log        logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case payload := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					// Слушатель не успевает - отключаем без повторов
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) Broadcast(event *domain.ChatEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Error("Failed to marshal broadcast event", "error", err)
		return
	}
	h.broadcast <- payload
}
