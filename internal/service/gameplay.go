package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

const maxPlayers = 2

type GamePlayService interface {
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)

	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)

	MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error)
}

type gamePlayService struct {
	logger *slog.Logger

	playerService  PlayerService
	gameService    GameService
	botService     BotService
	historyService HistoryService
}

func NewGamePlayService(
	logger *slog.Logger,
	playerService PlayerService,
	gameService GameService,
	botService BotService,
	historyService HistoryService,
) GamePlayService {
	return &gamePlayService{
		logger:         logger,
		playerService:  playerService,
		gameService:    gameService,
		botService:     botService,
		historyService: historyService,
	}
}

// MakeTurn places a ring for the player and lets a seated bot answer.
func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, pos rings.Position, size rings.Size) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, apperror.ErrGameIsNotStarted
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = game.MakeTurn(player.Seat, pos, size); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if game.IsWithBot() {
		if err = that.playBot(game); err != nil {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// playBot moves for the bot as long as the turn stays with it.
func (that *gamePlayService) playBot(game *entity.Game) error {
	for game.IsOngoing() {
		bot := game.PlayerBySeat(game.State.Turn)
		if bot == nil || !bot.IsBot() {
			return nil
		}

		if err := that.botService.MakeTurn(game); err != nil {
			return err
		}
	}

	return nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return that.join(ctx, game, playerID)
}

func (that *gamePlayService) JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	game, err := that.gameService.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	joined, err := that.join(ctx, game, playerID)
	if err != nil {
		that.releaseWaitingGame(ctx, game)
		return nil, err
	}

	if joined.IsWaiting() {
		// the player claimed its own room, put it back for someone else
		if err = that.gameService.UpdateGame(ctx, joined); err != nil {
			return nil, fmt.Errorf("failed to update game: %w", err)
		}
	}

	return joined, nil
}

// releaseWaitingGame puts a claimed room back into matchmaking after a failed join.
func (that *gamePlayService) releaseWaitingGame(ctx context.Context, game *entity.Game) {
	if !game.IsWaiting() {
		return
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		that.logger.Error("failed to release waiting game", "gameID", game.ID, "error", err)
	}
}

func (that *gamePlayService) join(ctx context.Context, game *entity.Game, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetPlayerByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == game.ID {
		return game, nil
	}

	if err = that.ensureNotPlaying(ctx, player); err != nil {
		return nil, err
	}

	if !game.IsWaiting() || len(game.Players) >= maxPlayers {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameFull, game.ID)
	}

	seat := rings.First
	if len(game.Players) > 0 {
		seat = game.Players[0].Seat.Opponent()
	}

	player.GameID = game.ID
	player.Seat = seat
	if err = that.playerService.UpdatePlayer(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// ensureNotPlaying rejects a player still seated in another unfinished room.
// A record pointing at a deleted or finished room does not count.
func (that *gamePlayService) ensureNotPlaying(ctx context.Context, player *entity.Player) error {
	if player.GameID == "" {
		return nil
	}

	current, err := that.gameService.GetGameByID(ctx, player.GameID)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get current game: %w", err)
	}

	if !current.IsFinished() {
		return fmt.Errorf("%w: game id %s", apperror.ErrAlreadyInGame, current.ID)
	}

	return nil
}

// GetOrCreateGame returns the player's current room or opens a new one.
func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	if player.GameID != "" {
		game, err := that.gameService.GetGameByID(ctx, player.GameID)
		if err == nil {
			return game, nil
		}

		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("failed to get game: %w", err)
		}

		that.logger.Warn("player points to a missing game", "player", player.ID, "gameID", player.GameID)
		player.Leave()
	}

	game, err := that.createGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create new game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) createGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	game, updatedPlayer, err := that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.UpdatePlayer(ctx, updatedPlayer); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	if game.IsWithBot() {
		if err = that.addBotToGame(ctx, game); err != nil {
			return nil, fmt.Errorf("failed to add bot to game: %w", err)
		}
	}

	return game, nil
}

func (that *gamePlayService) addBotToGame(ctx context.Context, game *entity.Game) error {
	playerSeat, botSeat := game.GetRandomSeats()

	for _, player := range game.Players {
		player.Seat = playerSeat
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			return fmt.Errorf("failed to update player: %w", err)
		}
	}

	// the bot lives only inside the room record
	botPlayer := entity.NewBotPlayer(game.ID, botSeat)
	game.Players = append(game.Players, botPlayer)
	game.Status = entity.StatusOngoing

	if err := that.playBot(game); err != nil {
		return fmt.Errorf("bot failed to make first turn: %w", err)
	}

	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return fmt.Errorf("failed to update game with bot: %w", err)
	}

	return nil
}

// CleanupGame archives a finished game, removes the room and frees its players.
func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "cleanupGame", "gameID", game.ID)

	if err := that.historyService.Record(ctx, game); err != nil {
		log.Error("failed to record game", "error", err)
	}

	if err := that.gameService.DeleteGame(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		seat, gameID := player.Seat, player.GameID
		player.Leave()
		if err := that.playerService.UpdatePlayer(ctx, player); err != nil {
			log.Error("failed to update", "player", player.ID, "error", err)
		}
		player.Seat, player.GameID = seat, gameID
	}
}
