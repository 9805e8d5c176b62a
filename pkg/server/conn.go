package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/NicolasHaas/gotrivia/pkg/protocol"
)

// conn is one live client connection: a socket, its outbox, and the pumps
// that move frames between the socket and the engine.
type conn struct {
	id     uint64
	sock   net.Conn
	outbox *Outbox

	done      chan struct{}
	closeOnce sync.Once
}

func newConn(id uint64, sock net.Conn) *conn {
	return &conn{
		id:     id,
		sock:   sock,
		outbox: NewOutbox(),
		done:   make(chan struct{}),
	}
}

// close tears the connection down: the socket unblocks both pumps and the
// outbox discards anything undelivered. Safe to call more than once.
func (c *conn) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.outbox.Close()
		_ = c.sock.Close()
	})
}

// send encodes a frame and queues it for delivery.
func (c *conn) send(cmd, payload string) bool {
	raw, err := protocol.BuildMessage(cmd, payload)
	if err != nil {
		slog.Error("encode response failed", "conn", c.id, "cmd", cmd, "err", err)
		return false
	}
	return c.outbox.Push(raw)
}

// readPump reads frames off the socket and hands them to the engine. It exits
// on EOF, a socket error, or a framing violation; all three end the session.
func (c *conn) readPump(e *Engine) {
	defer func() {
		select {
		case e.unregister <- c:
		case <-e.done:
		}
	}()

	for {
		frame, err := protocol.ReadFrame(c.sock)
		if err != nil {
			var fe *protocol.FrameError
			switch {
			case errors.As(err, &fe):
				slog.Warn("malformed frame, dropping connection", "conn", c.id, "err", err)
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
				slog.Debug("connection closed", "conn", c.id)
			default:
				slog.Warn("read error", "conn", c.id, "err", err)
			}
			return
		}
		e.metrics.FramesIn.Add(1)

		select {
		case e.frames <- frameEvent{c: c, frame: frame}:
		case <-c.done:
			return
		case <-e.done:
			return
		}
	}
}

// writePump drains the outbox to the socket. A write covers the whole frame;
// net.Conn.Write only returns once every byte is out or an error occurred, so
// partial writes never leave a frame half-delivered.
func (c *conn) writePump(e *Engine) {
	for {
		select {
		case <-c.done:
			return
		case <-c.outbox.Ready():
			for {
				frame, ok := c.outbox.Pop()
				if !ok {
					break
				}
				if _, err := c.sock.Write(frame); err != nil {
					slog.Warn("write error", "conn", c.id, "err", err)
					c.close()
					return
				}
				e.metrics.FramesOut.Add(1)
			}
		}
	}
}
