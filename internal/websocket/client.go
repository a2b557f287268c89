package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/askwhyharsh/scamcheck/pkg/logger"
)

type MessageHandler interface {
	HandleMessage(*Client, *IncomingMessage)
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 128 * 1024
	sendBuffer     = 32
)

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan *Message
	id      string
	ip      string
	handler MessageHandler
	logger  logger.Logger

	mu     sync.Mutex
	closed bool
}

func NewClient(hub *Hub, conn *websocket.Conn, id, ip string, handler MessageHandler, log logger.Logger) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan *Message, sendBuffer),
		id:      id,
		ip:      ip,
		handler: handler,
		logger:  log,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) IP() string { return c.ip }

// Send queues msg without blocking. It reports false when the client is
// gone or its buffer is full.
func (c *Client) Send(msg *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("Dropping websocket message, send buffer full", "client", c.id, "type", msg.Type)
		return false
	}
}

func (c *Client) SendError(requestID, errMsg, code string) {
	c.Send(NewErrorMessage(requestID, errMsg, code))
}

// close ends the write side. Safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Websocket closed unexpectedly", "client", c.id, "error", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.SendError("", "Invalid message format", "INVALID_FORMAT")
			continue
		}

		c.handler.HandleMessage(c, &msg)
	}
}

// WritePump writes one JSON frame per message and keeps the connection
// alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug("Websocket write failed", "client", c.id, "error", err)
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
