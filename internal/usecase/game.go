package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	CreateOrJoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error)

	GetGame(ctx context.Context, gameID string) (*entity.Game, error)
	LegalMoves(ctx context.Context, gameID string, seat rings.Player) ([]rings.Placement, error)
	History(ctx context.Context, playerID string) ([]*entity.Result, error)
}

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameService interface {
	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
}

type gamePlayService interface {
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)
}

type historyService interface {
	ListByPlayer(ctx context.Context, playerID string) ([]*entity.Result, error)
}

type gameUseCase struct {
	playerService   playerService
	gameService     gameService
	gamePlayService gamePlayService
	historyService  historyService
}

func NewGameUseCase(
	playerService playerService,
	gameService gameService,
	gamePlayService gamePlayService,
	historyService historyService,
) GameUseCase {
	return &gameUseCase{
		playerService:   playerService,
		gameService:     gameService,
		gamePlayService: gamePlayService,
		historyService:  historyService,
	}
}

func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		player, err := that.playerService.CreatePlayer(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *gameUseCase) GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.GetOrCreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create game: %w", err)
	}

	return game, nil
}

// CreateOrJoinPublicGame seats the player in a waiting public room, opening one when none waits.
func (that *gameUseCase) CreateOrJoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	if player.GameID == "" {
		game, err := that.gamePlayService.JoinWaitingPublicGame(ctx, playerID)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, apperror.ErrNoActiveGames) {
			return nil, fmt.Errorf("failed to join public game: %w", err)
		}
	}

	game, err := that.gamePlayService.GetOrCreateGame(ctx, player, entity.PublicType)
	if err != nil {
		return nil, fmt.Errorf("failed to create public game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gamePlayService.JoinGameByID(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to game: %w", err)
	}

	return game, nil
}

// MakeTurn plays one placement. A finished game is cleaned up and returned
// together with apperror.ErrGameAlreadyOver.
func (that *gameUseCase) MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error) {
	game, err := that.gamePlayService.MakeTurn(ctx, playerID, pos, size)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsFinished() {
		that.gamePlayService.CleanupGame(ctx, game)

		return game, apperror.ErrGameAlreadyOver
	}

	return game, nil
}

func (that *gameUseCase) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) LegalMoves(ctx context.Context, gameID string, seat rings.Player) ([]rings.Placement, error) {
	if !seat.Valid() {
		return nil, rings.ErrInvalidPlayer
	}

	game, err := that.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	return rings.LegalMoves(game.State, seat), nil
}

func (that *gameUseCase) History(ctx context.Context, playerID string) ([]*entity.Result, error) {
	results, err := that.historyService.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return results, nil
}
