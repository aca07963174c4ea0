package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
	"github.com/rocketscienceinc/three-backend/internal/service"
)

type mockGameUseCase struct{ mock.Mock }

func (that *mockGameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	args := that.Called(ctx, playerID)
	return args.Get(0).(*entity.Player), args.Error(1)
}

func (that *mockGameUseCase) GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	args := that.Called(ctx, playerID, gameType)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameUseCase) CreateOrJoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, playerID)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID, playerID)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameUseCase) MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error) {
	args := that.Called(ctx, playerID, pos, size)
	return args.Get(0).(*entity.Game), args.Error(1)
}

func (that *mockGameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	args := that.Called(ctx, gameID)
	return args.Get(0).(*entity.Game), args.Error(1)
}

type testServer struct {
	url     string
	useCase *mockGameUseCase
	auth    service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	auth, err := service.NewAuthService("test-secret", time.Hour)
	require.NoError(t, err)

	useCase := &mockGameUseCase{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	server := New(logger, useCase, auth, []string{"http://localhost:3000"})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &testServer{
		url:     "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws",
		useCase: useCase,
		auth:    auth,
	}
}

func (that *testServer) dial(ctx context.Context, t *testing.T) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, that.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	return conn
}

// connectAs opens a connection already bound to playerID.
func (that *testServer) connectAs(ctx context.Context, t *testing.T, playerID string) *websocket.Conn {
	t.Helper()

	token, err := that.auth.GenerateToken(playerID)
	require.NoError(t, err)

	that.useCase.On("GetOrCreatePlayer", mock.Anything, playerID).Return(&entity.Player{ID: playerID}, nil).Once()

	conn := that.dial(ctx, t)
	send(ctx, t, conn, "connect", Payload{Token: token})

	action, payload := receive(ctx, t, conn)
	require.Equal(t, "connect", action)
	require.Empty(t, payload.Error)

	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, action string, payload any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, Message{Action: action, Payload: raw}))
}

func receive(ctx context.Context, t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	var message Message
	require.NoError(t, wsjson.Read(ctx, conn, &message))

	var payload Payload
	require.NoError(t, json.Unmarshal(message.Payload, &payload))

	return message.Action, payload
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	return ctx
}

func newTurn(pos rings.Position, size rings.Size) *Turn {
	return &Turn{Position: &Cell{Row: &pos.Row, Col: &pos.Col}, Size: &size}
}

func twoPlayerGame(status string) *entity.Game {
	game := entity.NewGame("g1", entity.PrivateType)
	game.Status = status
	game.Players = []*entity.Player{
		{ID: "alice", Seat: rings.First, GameID: "g1"},
		{ID: "bob", Seat: rings.Second, GameID: "g1"},
	}
	return game
}

func TestServer_Connect(t *testing.T) {
	ctx := testContext(t)
	ts := newTestServer(t)

	// Given: a new visitor
	ts.useCase.On("GetOrCreatePlayer", mock.Anything, "").Return(&entity.Player{ID: "alice"}, nil).Once()
	conn := ts.dial(ctx, t)

	// When: it connects without a token
	send(ctx, t, conn, "connect", Payload{})
	action, payload := receive(ctx, t, conn)

	// Then: a player and a session token come back
	assert.Equal(t, "connect", action)
	require.NotNil(t, payload.Player)
	assert.Equal(t, "alice", payload.Player.ID)
	require.NotEmpty(t, payload.Token)

	playerID, err := ts.auth.ParseToken(payload.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", playerID)

	ts.useCase.AssertExpectations(t)
}

func TestServer_ConnectWithBadToken(t *testing.T) {
	ctx := testContext(t)
	ts := newTestServer(t)
	conn := ts.dial(ctx, t)

	send(ctx, t, conn, "connect", Payload{Token: "forged"})
	_, payload := receive(ctx, t, conn)

	assert.Equal(t, apperror.ErrUnauthorized.Error(), payload.Error)
	ts.useCase.AssertNotCalled(t, "GetOrCreatePlayer", mock.Anything, mock.Anything)
}

func TestServer_RejectsBeforeConnect(t *testing.T) {
	ctx := testContext(t)
	ts := newTestServer(t)
	conn := ts.dial(ctx, t)

	send(ctx, t, conn, "game:turn", Payload{Turn: newTurn(rings.Position{}, rings.Small)})
	action, payload := receive(ctx, t, conn)

	assert.Equal(t, "game:turn", action)
	assert.Equal(t, errNotConnected.Error(), payload.Error)
}

func TestServer_UnknownAction(t *testing.T) {
	ctx := testContext(t)
	ts := newTestServer(t)
	conn := ts.dial(ctx, t)

	send(ctx, t, conn, "game:undo", Payload{})
	_, payload := receive(ctx, t, conn)

	assert.Equal(t, "unknown action", payload.Error)
}

func TestServer_JoinBroadcastsToBothPlayers(t *testing.T) {
	ctx := testContext(t)
	ts := newTestServer(t)

	alice := ts.connectAs(ctx, t, "alice")
	bob := ts.connectAs(ctx, t, "bob")

	ts.useCase.On("JoinGame", mock.Anything, "g1", "bob").Return(twoPlayerGame(entity.StatusOngoing), nil).Once()

	// When: bob joins alice's room
	send(ctx, t, bob, "game:join", Payload{Game: &entity.Game{ID: "g1"}})

	// Then: both receive the started game with their own seat
	for conn, seat := range map[*websocket.Conn]rings.Player{alice: rings.First, bob: rings.Second} {
		action, payload := receive(ctx, t, conn)
		assert.Equal(t, "game:join", action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, entity.StatusOngoing, payload.Game.Status)
		require.NotNil(t, payload.Player)
		assert.Equal(t, seat, payload.Player.Seat)
	}
}

func TestServer_GameTurn(t *testing.T) {
	pos := rings.Position{Row: 1, Col: 1}

	t.Run("Accepted turn reaches both players", func(t *testing.T) {
		ctx := testContext(t)
		ts := newTestServer(t)
		alice := ts.connectAs(ctx, t, "alice")
		bob := ts.connectAs(ctx, t, "bob")

		game := twoPlayerGame(entity.StatusOngoing)
		require.NoError(t, game.MakeTurn(rings.First, pos, rings.Large))
		ts.useCase.On("MakeTurn", mock.Anything, "alice", pos, rings.Large).Return(game, nil).Once()

		send(ctx, t, alice, "game:turn", Payload{Turn: newTurn(pos, rings.Large)})

		for _, conn := range []*websocket.Conn{alice, bob} {
			action, payload := receive(ctx, t, conn)
			assert.Equal(t, "game:turn", action)
			require.NotNil(t, payload.Game)
			assert.Equal(t, rings.Second, payload.Game.State.Turn)
			assert.Equal(t, rings.First, payload.Game.State.Board.Occupant(pos, rings.Large))
		}
	})

	t.Run("Rejected turn is reported to the mover only", func(t *testing.T) {
		ctx := testContext(t)
		ts := newTestServer(t)
		bob := ts.connectAs(ctx, t, "bob")

		ts.useCase.On("MakeTurn", mock.Anything, "bob", pos, rings.Small).
			Return((*entity.Game)(nil), fmt.Errorf("failed to make turn: %w", apperror.ErrNotYourTurn)).Once()

		send(ctx, t, bob, "game:turn", Payload{Turn: newTurn(pos, rings.Small)})
		_, payload := receive(ctx, t, bob)

		assert.Equal(t, apperror.ErrNotYourTurn.Error(), payload.Error)
		assert.Nil(t, payload.Game)
	})

	t.Run("Finishing turn sends the final game", func(t *testing.T) {
		ctx := testContext(t)
		ts := newTestServer(t)
		alice := ts.connectAs(ctx, t, "alice")
		bob := ts.connectAs(ctx, t, "bob")

		game := twoPlayerGame(entity.StatusFinished)
		game.State.Outcome = rings.Outcome{Status: rings.Won, Winner: rings.First, Pattern: rings.FullStack}
		ts.useCase.On("MakeTurn", mock.Anything, "alice", pos, rings.Small).
			Return(game, apperror.ErrGameAlreadyOver).Once()

		send(ctx, t, alice, "game:turn", Payload{Turn: newTurn(pos, rings.Small)})

		for _, conn := range []*websocket.Conn{alice, bob} {
			_, payload := receive(ctx, t, conn)
			assert.Empty(t, payload.Error)
			require.NotNil(t, payload.Game)
			assert.Equal(t, entity.StatusFinished, payload.Game.Status)
			assert.Equal(t, rings.Won, payload.Game.State.Outcome.Status)
			assert.Equal(t, rings.FullStack, payload.Game.State.Outcome.Pattern)
		}
	})
}

func TestServer_GameTurn_IncompletePlacement(t *testing.T) {
	payloads := map[string]string{
		"missing size":     `{"turn":{"position":{"row":1,"col":1}}}`,
		"missing position": `{"turn":{"size":"large"}}`,
		"missing column":   `{"turn":{"position":{"row":1},"size":"small"}}`,
	}

	for name, raw := range payloads {
		t.Run(name, func(t *testing.T) {
			ctx := testContext(t)
			ts := newTestServer(t)
			alice := ts.connectAs(ctx, t, "alice")

			// When: alice sends a turn with a field left out
			send(ctx, t, alice, "game:turn", json.RawMessage(raw))
			action, payload := receive(ctx, t, alice)

			// Then: the turn is refused without reaching the game
			assert.Equal(t, "game:turn", action)
			assert.Equal(t, "malformed payload", payload.Error)
			ts.useCase.AssertNotCalled(t, "MakeTurn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestServer_LockGame(t *testing.T) {
	server := New(slog.New(slog.NewJSONHandler(io.Discard, nil)), &mockGameUseCase{}, nil, nil)

	holders := func() int {
		server.gameLocksMutex.Lock()
		defer server.gameLocksMutex.Unlock()

		if lock, ok := server.gameLocks["g1"]; ok {
			return lock.holders
		}
		return 0
	}

	// Given: one handler holds the game and a second one waits for it
	unlockFirst := server.lockGame("g1")

	acquired := make(chan func())
	go func() { acquired <- server.lockGame("g1") }()

	require.Eventually(t, func() bool { return holders() == 2 }, time.Second, time.Millisecond)
	select {
	case <-acquired:
		t.Fatal("second handler entered while the game was held")
	default:
	}

	// When: the first handler is done
	unlockFirst()

	// Then: the waiter gets the same lock and the entry survives until it leaves
	var unlockSecond func()
	select {
	case unlockSecond = <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second handler never got the game")
	}
	assert.Equal(t, 1, holders())

	unlockSecond()

	server.gameLocksMutex.Lock()
	assert.Empty(t, server.gameLocks)
	server.gameLocksMutex.Unlock()
}

func TestOriginPatterns(t *testing.T) {
	patterns := originPatterns([]string{"http://localhost:3000", "https://three.example.com", "*.example.org"})

	assert.Equal(t, []string{"localhost:3000", "three.example.com", "*.example.org"}, patterns)
}
