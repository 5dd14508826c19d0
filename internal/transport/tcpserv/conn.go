package tcpserv

import (
	"bufio"
	"net"
	"sync"

	"github.com/anacarcan/prueba/internal/protocol"
)

// Conn adapts a net.Conn to the game's line-oriented connection. One reader
// goroutine owns the socket's read side for the connection's whole lifetime
// and forwards every line, in receipt order, into the lines channel; the
// consumer role of that channel moves from the handshake to the queue watcher
// to the session, never shared.
type Conn struct {
	raw   net.Conn
	lines chan string
	done  chan struct{}

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an accepted socket and starts its reader.
func NewConn(raw net.Conn) *Conn {
	c := &Conn{
		raw:   raw,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	go c.readLoop()
	return c
}

func (c *Conn) readLoop() {
	defer close(c.lines)
	scanner := bufio.NewScanner(c.raw)
	for scanner.Scan() {
		select {
		case c.lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
	// Read failure or EOF: surface the disconnect to whoever is consuming.
	select {
	case c.lines <- protocol.CancelKeyword:
	case <-c.done:
	}
}

func (c *Conn) Lines() <-chan string { return c.lines }

// WriteLine sends one newline-terminated message.
func (c *Conn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.raw.Write([]byte(line + "\n"))
	return err
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.closeErr = c.raw.Close()
	})
	return c.closeErr
}

// RemoteAddr exposes the peer address for logging.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }
