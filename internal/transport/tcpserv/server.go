// Package tcpserv exposes the game over the line-oriented TCP protocol.
package tcpserv

import (
	"context"
	"errors"
	"log"
	"net"

	"github.com/anacarcan/prueba/internal/game"
)

// Server accepts TCP connections and hands each one to the game service. A
// failed session or handshake never stops the accept loop.
type Server struct {
	service *game.Service
}

func NewServer(service *game.Service) *Server {
	return &Server{service: service}
}

// Serve accepts connections until the listener closes or the context ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		conn := NewConn(raw)
		log.Printf("connection from %s", conn.RemoteAddr())
		go s.service.HandleConn(ctx, conn)
	}
}

// ListenAndServe listens on addr and serves until the context ends.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	log.Printf("trivia server listening on %s", addr)
	return s.Serve(ctx, ln)
}
