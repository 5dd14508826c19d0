// Package wsbridge exposes the same line protocol over websockets so browser
// clients can play without a raw TCP socket: one text frame carries exactly
// one protocol line.
package wsbridge

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/anacarcan/prueba/internal/game"
	"github.com/anacarcan/prueba/internal/protocol"
	"github.com/gorilla/websocket"
)

// Handler upgrades HTTP requests and wires each websocket into the game
// service exactly like a TCP connection.
type Handler struct {
	service  *game.Service
	upgrader websocket.Upgrader
}

func NewHandler(service *game.Service) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServePlay is the /play endpoint.
func (h *Handler) ServePlay(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	log.Printf("ws connection from %s", ws.RemoteAddr())
	// The request context dies with this handler; the player outlives it.
	h.service.HandleConn(context.Background(), newConn(ws))
}

// conn adapts a websocket to game.Conn with the same reader-goroutine
// ownership contract as the TCP transport.
type conn struct {
	ws    *websocket.Conn
	lines chan string
	done  chan struct{}

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

func newConn(ws *websocket.Conn) *conn {
	c := &conn{
		ws:    ws,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *conn) readLoop() {
	defer close(c.lines)
	for {
		kind, payload, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case c.lines <- protocol.CancelKeyword:
			case <-c.done:
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		select {
		case c.lines <- string(payload):
		case <-c.done:
			return
		}
	}
}

func (c *conn) Lines() <-chan string { return c.lines }

func (c *conn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line))
}

func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}
