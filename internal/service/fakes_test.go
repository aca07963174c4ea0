package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/stretchr/testify/require"
)

var errBotStored = errors.New("bot player stored")

// memoryStore keeps JSON copies so tests see the same aliasing rules as Redis.
type memoryStore struct {
	mu      sync.Mutex
	games   map[string][]byte
	players map[string][]byte
	waiting []string
	results []*entity.Result
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		games:   map[string][]byte{},
		players: map[string][]byte{},
	}
}

type memoryGames struct{ *memoryStore }

func (that memoryGames) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	that.games[game.ID] = data

	that.waiting = removeID(that.waiting, game.ID)
	if game.IsPublic() && game.IsWaiting() {
		that.waiting = append(that.waiting, game.ID)
	}

	return nil
}

func (that memoryGames) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	var game entity.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}

	return &game, nil
}

func (that memoryGames) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	that.mu.Lock()
	if len(that.waiting) == 0 {
		that.mu.Unlock()
		return nil, apperror.ErrNoActiveGames
	}
	id := that.waiting[0]
	that.waiting = that.waiting[1:]
	that.mu.Unlock()

	return that.GetByID(ctx, id)
}

func (that memoryGames) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(that.games, id)
	that.waiting = removeID(that.waiting, id)

	return nil
}

type memoryPlayers struct{ *memoryStore }

func (that memoryPlayers) CreateOrUpdate(_ context.Context, player *entity.Player) error {
	if player.IsBot() {
		return errBotStored
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	data, err := json.Marshal(player)
	if err != nil {
		return err
	}
	that.players[player.ID] = data

	return nil
}

func (that memoryPlayers) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	data, ok := that.players[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}

	var player entity.Player
	if err := json.Unmarshal(data, &player); err != nil {
		return nil, err
	}

	return &player, nil
}

type memoryResults struct{ *memoryStore }

func (that memoryResults) Save(_ context.Context, result *entity.Result) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.results = append(that.results, result)

	return nil
}

func (that memoryResults) ListByPlayer(_ context.Context, playerID string, limit int) ([]*entity.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	var found []*entity.Result
	for i := len(that.results) - 1; i >= 0 && len(found) < limit; i-- {
		if r := that.results[i]; r.FirstID == playerID || r.SecondID == playerID {
			found = append(found, r)
		}
	}

	return found, nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

type services struct {
	store    *memoryStore
	players  PlayerService
	games    GameService
	history  HistoryService
	gameplay GamePlayService
}

func newServices(t *testing.T) *services {
	t.Helper()

	store := newMemoryStore()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	players := NewPlayerService(memoryPlayers{store})
	games := NewGameService(memoryGames{store})
	history := NewHistoryService(memoryResults{store}, 10)

	return &services{
		store:    store,
		players:  players,
		games:    games,
		history:  history,
		gameplay: NewGamePlayService(logger, players, games, NewBotService(), history),
	}
}

func (that *services) newPlayer(t *testing.T) *entity.Player {
	t.Helper()

	player, err := that.players.CreatePlayer(context.Background())
	require.NoError(t, err)

	return player
}
