package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

var (
	ErrPlayerNotFound = fmt.Errorf("player %w", apperror.ErrNotFound)
	ErrBotPlayer      = errors.New("bot players live inside their game")
)

const (
	playerFieldGameID = "game_id"
	playerFieldSeat   = "seat"
)

type PlayerRepository interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

// dbPlayer keeps each player as a hash of its room and seat under player:<id>.
type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func playerKey(id string) string {
	return "player:" + id
}

func (that *dbPlayer) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	if player.IsBot() {
		return fmt.Errorf("%w: %s", ErrBotPlayer, player.ID)
	}

	seat, err := player.Seat.MarshalText()
	if err != nil {
		return fmt.Errorf("failed to encode seat: %w", err)
	}

	err = that.client.HSet(ctx, playerKey(player.ID),
		playerFieldGameID, player.GameID,
		playerFieldSeat, string(seat),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	fields, err := that.client.HGetAll(ctx, playerKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	// a missing hash reads back as an empty map
	if len(fields) == 0 {
		return nil, ErrPlayerNotFound
	}

	player := &entity.Player{
		ID:     id,
		GameID: fields[playerFieldGameID],
	}

	if err = player.Seat.UnmarshalText([]byte(fields[playerFieldSeat])); err != nil {
		return nil, fmt.Errorf("failed to decode seat of player %s: %w", id, err)
	}

	return player, nil
}
