package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

const shutdownTimeout = 5 * time.Second

type gameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	CreateOrJoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error)
	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
}

type authService interface {
	GenerateToken(playerID string) (string, error)
	ParseToken(token string) (string, error)
}

type handlerFunc func(ctx context.Context, message *Message, conn *client) error

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	authService authService

	originPatterns []string
	handlers       map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*client

	gameLocksMutex sync.Mutex
	gameLocks      map[string]*gameLock
}

// gameLock is dropped from the map once nobody holds or waits for it.
type gameLock struct {
	mu      sync.Mutex
	holders int
}

func New(logger *slog.Logger, gameUseCase gameUseCase, authService authService, allowedOrigins []string) *Server {
	server := &Server{
		logger:         logger,
		gameUseCase:    gameUseCase,
		authService:    authService,
		originPatterns: originPatterns(allowedOrigins),

		handlers:    make(map[string]handlerFunc),
		connections: make(map[string]*client),
		gameLocks:   make(map[string]*gameLock),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["game:new"] = server.handleNewGame
	server.handlers["game:join"] = server.handleJoinGame
	server.handlers["game:turn"] = server.handleGameTurn
	server.handlers["game:state"] = server.handleGameState

	return server
}

// Handler serves the websocket endpoint on /ws.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWebSocket)
	return mux
}

// Start runs the WebSocket server until ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown websocket server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWebSocket(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWebSocket")

	conn, err := websocket.Accept(writer, req, &websocket.AcceptOptions{
		OriginPatterns: that.originPatterns,
	})
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	conn.SetReadLimit(1 << 16)

	c := newClient(conn)
	go c.writeLoop(ctx)

	log.Info("WebSocket connection established")

	err = that.handleMessages(ctx, c)

	close(c.done)
	that.handleDisconnect(c)

	if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
		return
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages processes messages from the client until the connection ends.
func (that *Server) handleMessages(ctx context.Context, c *client) error {
	log := that.logger.With("method", "handleMessages")

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			that.sendErrorResponse(c, "", "malformed message")
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendErrorResponse(c, message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, &message, c); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

func (that *Server) handleDisconnect(c *client) {
	playerID, _ := c.session()
	if playerID == "" {
		return
	}

	that.connectionsMutex.Lock()
	if that.connections[playerID] == c {
		delete(that.connections, playerID)
	}
	that.connectionsMutex.Unlock()

	that.logger.Info("player disconnected", "playerID", playerID)
}

// register binds the connection to the player, replacing an older connection of the same player.
func (that *Server) register(playerID string, c *client) {
	c.setPlayer(playerID)

	that.connectionsMutex.Lock()
	that.connections[playerID] = c
	that.connectionsMutex.Unlock()
}

func (that *Server) connection(playerID string) (*client, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	c, ok := that.connections[playerID]
	return c, ok
}

// lockGame serializes updates of one game across connections.
func (that *Server) lockGame(gameID string) func() {
	that.gameLocksMutex.Lock()
	lock, ok := that.gameLocks[gameID]
	if !ok {
		lock = &gameLock{}
		that.gameLocks[gameID] = lock
	}
	lock.holders++
	that.gameLocksMutex.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		that.gameLocksMutex.Lock()
		lock.holders--
		if lock.holders == 0 {
			delete(that.gameLocks, gameID)
		}
		that.gameLocksMutex.Unlock()
	}
}

// originPatterns turns configured origins like http://localhost:3000 into host patterns.
func originPatterns(allowedOrigins []string) []string {
	patterns := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Host == "" {
			patterns = append(patterns, origin)
			continue
		}
		patterns = append(patterns, parsed.Host)
	}
	return patterns
}
