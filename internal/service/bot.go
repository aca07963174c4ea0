package service

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
)

type BotService interface {
	MakeTurn(game *entity.Game) error
}

type botService struct{}

func NewBotService() BotService {
	return &botService{}
}

// MakeTurn plays one random legal placement for the bot seated in game.
func (that *botService) MakeTurn(game *entity.Game) error {
	var botPlayer *entity.Player
	for _, player := range game.Players {
		if player.IsBot() {
			botPlayer = player
			break
		}
	}

	if botPlayer == nil {
		return ErrBotNotFound
	}

	moves := rings.LegalMoves(game.State, botPlayer.Seat)
	if len(moves) == 0 {
		return ErrNoAvailableMoves
	}

	chosen := moves[rand.IntN(len(moves))] //nolint: gosec // it's ok

	if err := game.MakeTurn(botPlayer.Seat, chosen.Position, chosen.Size); err != nil {
		return fmt.Errorf("bot failed to make turn: %w", err)
	}

	return nil
}
