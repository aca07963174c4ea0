package websocket

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 15 * time.Second
	writeTimeout   = 5 * time.Second
)

// client is one websocket connection. Writes go through send so that
// handlers of other connections can broadcast without touching conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}

	mu       sync.Mutex
	playerID string
	gameID   string
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue reports false when the client is gone or too slow to keep up.
func (that *client) enqueue(data []byte) bool {
	select {
	case <-that.done:
		return false
	default:
	}

	select {
	case that.send <- data:
		return true
	case <-that.done:
		return false
	default:
		return false
	}
}

func (that *client) writeLoop(ctx context.Context) {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-that.done:
			return
		case <-ctx.Done():
			return
		case data := <-that.send:
			if err := that.write(ctx, data); err != nil {
				return
			}
		case <-ping.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := that.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (that *client) write(ctx context.Context, data []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return that.conn.Write(writeCtx, websocket.MessageText, data)
}

func (that *client) session() (string, string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.playerID, that.gameID
}

func (that *client) setPlayer(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.playerID = playerID
}

func (that *client) setGame(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.gameID = gameID
}
