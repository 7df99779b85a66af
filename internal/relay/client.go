package relay

import (
	"time"

	"github.com/gorilla/websocket"

	"agency_chat/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Client - одно websocket-соединение и его сессионное состояние.
// UserID и ConversationID живут только в рамках соединения и
// выставляются событиями identify/message (никаких общих переменных
// между соединениями).
type Client struct {
	conn *websocket.Conn
	send chan []byte

	UserID         string
	ConversationID string
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		send: make(chan []byte, 32),
	}
}

// Identified сообщает, представилось ли соединение.
func (c *Client) Identified() bool {
	return c.UserID != ""
}

// ReadEvent блокирует до следующего события от клиента.
func (c *Client) ReadEvent() (*domain.ChatEvent, error) {
	var event domain.ChatEvent
	if err := c.conn.ReadJSON(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

// WritePump переливает сообщения из канала send в соединение.
// Запускается в отдельной горутине на каждое соединение.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) Close() {
	c.conn.Close()
}
