package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

var errNotConnected = errors.New("send connect first")

// handleConnect identifies the player by session token, or creates a new one.
func (that *Server) handleConnect(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "malformed payload")
		return err
	}

	var playerID string
	if payloadReq.Token != "" {
		id, err := that.authService.ParseToken(payloadReq.Token)
		if err != nil {
			that.sendError(c, msg.Action, err)
			return fmt.Errorf("failed to parse token: %w", err)
		}
		playerID = id
	}

	player, err := that.gameUseCase.GetOrCreatePlayer(ctx, playerID)
	if err != nil {
		that.sendError(c, msg.Action, err)
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	token, err := that.authService.GenerateToken(player.ID)
	if err != nil {
		that.sendError(c, msg.Action, err)
		return fmt.Errorf("failed to generate token: %w", err)
	}

	that.register(player.ID, c)

	payloadResp := Payload{
		Player: player,
		Token:  token,
	}

	if player.GameID != "" {
		game, err := that.gameUseCase.GetGame(ctx, player.GameID)
		if err != nil {
			log.Warn("failed to load current game", "gameID", player.GameID, "error", err)
		} else {
			c.setGame(game.ID)
			payloadResp.Game = game
		}
	}

	that.send(c, msg.Action, payloadResp)

	log.Info("player connected", "playerID", player.ID)

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleNewGame")

	playerID, _ := c.session()
	if playerID == "" {
		that.sendError(c, msg.Action, errNotConnected)
		return errNotConnected
	}

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "malformed payload")
		return err
	}

	gameType := entity.PrivateType
	if payloadReq.Game != nil && payloadReq.Game.Type != "" {
		gameType = payloadReq.Game.Type
	}

	var (
		game *entity.Game
		err  error
	)

	switch gameType {
	case entity.PublicType:
		game, err = that.gameUseCase.CreateOrJoinPublicGame(ctx, playerID)
	case entity.PrivateType, entity.WithBotType:
		game, err = that.gameUseCase.GetOrCreateGame(ctx, playerID, gameType)
	default:
		that.sendErrorResponse(c, msg.Action, "unknown game type")
		return fmt.Errorf("unknown game type %q", gameType)
	}

	if err != nil {
		that.sendError(c, msg.Action, err)
		return fmt.Errorf("failed to create or join game: %w", err)
	}

	c.setGame(game.ID)
	that.broadcast(msg.Action, game)

	log.Info("game ready", "gameID", game.ID, "type", game.Type)

	return nil
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleJoinGame")

	playerID, _ := c.session()
	if playerID == "" {
		that.sendError(c, msg.Action, errNotConnected)
		return errNotConnected
	}

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "malformed payload")
		return err
	}

	if payloadReq.Game == nil || payloadReq.Game.ID == "" {
		that.sendErrorResponse(c, msg.Action, "game id is required")
		return nil
	}

	unlock := that.lockGame(payloadReq.Game.ID)
	game, err := that.gameUseCase.JoinGame(ctx, payloadReq.Game.ID, playerID)
	unlock()

	if err != nil {
		that.sendError(c, msg.Action, err)
		return fmt.Errorf("failed to join game %s: %w", payloadReq.Game.ID, err)
	}

	c.setGame(game.ID)
	that.broadcast(msg.Action, game)

	log.Info("player joined game", "playerID", playerID, "gameID", game.ID)

	return nil
}

func (that *Server) handleGameTurn(ctx context.Context, msg *Message, c *client) error {
	log := that.logger.With("method", "handleGameTurn")

	playerID, gameID := c.session()
	if playerID == "" {
		that.sendError(c, msg.Action, errNotConnected)
		return errNotConnected
	}

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "malformed payload")
		return err
	}

	if payloadReq.Turn == nil {
		that.sendErrorResponse(c, msg.Action, "turn is required")
		return nil
	}

	pos, size, ok := payloadReq.Turn.placement()
	if !ok {
		that.sendErrorResponse(c, msg.Action, "malformed payload")
		return nil
	}

	if gameID != "" {
		unlock := that.lockGame(gameID)
		defer unlock()
	}

	game, err := that.gameUseCase.MakeTurn(ctx, playerID, pos, size)
	if errors.Is(err, apperror.ErrGameAlreadyOver) && game != nil {
		that.broadcast(msg.Action, game)

		log.Info("game finished", "gameID", game.ID, "status", game.State.Outcome.Status.String())
		return nil
	}

	if err != nil {
		that.sendError(c, msg.Action, err)
		return fmt.Errorf("failed to make turn: %w", err)
	}

	that.broadcast(msg.Action, game)

	return nil
}

func (that *Server) handleGameState(ctx context.Context, msg *Message, c *client) error {
	playerID, gameID := c.session()
	if playerID == "" {
		that.sendError(c, msg.Action, errNotConnected)
		return errNotConnected
	}

	var payloadReq Payload
	if err := decodePayload(msg, &payloadReq); err != nil {
		that.sendErrorResponse(c, msg.Action, "malformed payload")
		return err
	}

	if payloadReq.Game != nil && payloadReq.Game.ID != "" {
		gameID = payloadReq.Game.ID
	}

	if gameID == "" {
		that.sendError(c, msg.Action, apperror.ErrGameIsNotStarted)
		return nil
	}

	game, err := that.gameUseCase.GetGame(ctx, gameID)
	if err != nil {
		that.sendError(c, msg.Action, err)
		return fmt.Errorf("failed to get game: %w", err)
	}

	that.send(c, msg.Action, Payload{Player: game.PlayerByID(playerID), Game: game})

	return nil
}

// broadcast sends the game to every seated human player that is connected.
func (that *Server) broadcast(action string, game *entity.Game) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		conn, ok := that.connection(player.ID)
		if !ok {
			log.Warn("connection not found for player", "playerID", player.ID)
			continue
		}

		that.send(conn, action, Payload{Player: player, Game: game})
	}
}

func (that *Server) send(c *client, action string, payload Payload) {
	data, err := encodeMessage(action, payload)
	if err != nil {
		that.logger.Error("failed to encode message", "action", action, "error", err)
		return
	}

	if !c.enqueue(data) {
		that.logger.Warn("dropped message for slow or closed connection", "action", action)
	}
}

func (that *Server) sendErrorResponse(c *client, action, errorMsg string) {
	that.send(c, action, Payload{Error: errorMsg})
}

// sendError reports err to the client without leaking internal details.
func (that *Server) sendError(c *client, action string, err error) {
	that.sendErrorResponse(c, action, errorMessage(err))
}

func errorMessage(err error) string {
	known := []error{
		errNotConnected,
		apperror.ErrOutOfPieces,
		apperror.ErrSlotOccupied,
		apperror.ErrNotYourTurn,
		apperror.ErrGameAlreadyOver,
		apperror.ErrGameIsNotStarted,
		apperror.ErrGameFull,
		apperror.ErrAlreadyInGame,
		apperror.ErrNoActiveGames,
		apperror.ErrNotFound,
		apperror.ErrUnauthorized,
		rings.ErrInvalidPosition,
		rings.ErrInvalidSize,
		rings.ErrInvalidPlayer,
	}

	for _, target := range known {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return "internal error"
}

func decodePayload(msg *Message, payload *Payload) error {
	if len(msg.Payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(msg.Payload, payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return nil
}
