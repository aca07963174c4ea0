package rings

import (
	"fmt"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
)

// Move is one placement by one player.
type Move struct {
	Player   Player   `json:"player"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Placement is a (position, size) pair a player could play.
type Placement struct {
	Position Position `json:"position"`
	Size     Size     `json:"size"`
}

// Validate checks a proposed placement against state without mutating it.
func Validate(state *GameState, player Player, pos Position, size Size) (Move, error) {
	if state.Outcome.Status != InProgress {
		return Move{}, apperror.ErrGameAlreadyOver
	}

	if !player.Valid() {
		return Move{}, fmt.Errorf("%w: %d", ErrInvalidPlayer, uint8(player))
	}

	if state.Turn != player {
		return Move{}, apperror.ErrNotYourTurn
	}

	if err := checkPlacement(pos, size); err != nil {
		return Move{}, err
	}

	if state.Inventory.Remaining(player, size) == 0 {
		return Move{}, fmt.Errorf("%w: %s", apperror.ErrOutOfPieces, size)
	}

	if state.Board.Occupant(pos, size) != NoPlayer {
		return Move{}, fmt.Errorf("%w: %s ring at %s", apperror.ErrSlotOccupied, size, pos)
	}

	return Move{Player: player, Position: pos, Size: size}, nil
}

func checkPlacement(pos Position, size Size) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidPosition, pos)
	}

	if !size.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidSize, uint8(size))
	}

	return nil
}

// legal reports whether player could place size at pos, ignoring whose turn it is.
func legal(state *GameState, player Player, pos Position, size Size) bool {
	return state.Inventory.Remaining(player, size) > 0 && state.Board.Occupant(pos, size) == NoPlayer
}
