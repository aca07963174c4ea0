package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/three-backend/internal/apperror"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

const (
	StatusFinished = "finished"
	StatusOngoing  = "ongoing"
	StatusWaiting  = "waiting"
)

const (
	PublicType  = "public"
	PrivateType = "private"
	WithBotType = "bot"
)

var ErrUnknownGameStatus = errors.New("unknown game status")

// Game is a room: two seated players and the engine state they share.
type Game struct {
	ID      string          `json:"id"`
	State   rings.GameState `json:"state"`
	Status  string          `json:"status"`
	Players []*Player       `json:"players,omitempty"`
	Type    string          `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:     id,
		State:  rings.NewGame(),
		Status: StatusWaiting,
		Type:   gameType,
	}
}

// MakeTurn submits one placement for the player sitting in seat.
// The game is left untouched when the engine rejects the move.
func (that *Game) MakeTurn(seat rings.Player, pos rings.Position, size rings.Size) error {
	if err := that.ConfirmOngoingState(); err != nil {
		return err
	}

	next, err := rings.SubmitMove(that.State, seat, pos, size)
	if err != nil {
		return fmt.Errorf("rejected move: %w", err)
	}

	that.State = next
	that.UpdateGameState()

	return nil
}

func (that *Game) UpdateGameState() {
	if rings.CurrentOutcome(that.State).Terminal() {
		that.Status = StatusFinished
		return
	}

	that.Status = StatusOngoing
}

func (that *Game) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	switch {
	case that.IsWaiting():
		return apperror.ErrGameIsNotStarted
	case that.IsFinished():
		return apperror.ErrGameAlreadyOver
	case that.IsOngoing():
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownGameStatus, that.Status)
	}
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) IsWithBot() bool {
	return that.Type == WithBotType
}

// PlayerBySeat returns the player sitting in seat, or nil.
func (that *Game) PlayerBySeat(seat rings.Player) *Player {
	for _, player := range that.Players {
		if player.Seat == seat {
			return player
		}
	}
	return nil
}

// PlayerByID returns the seated player with id, or nil.
func (that *Game) PlayerByID(id string) *Player {
	for _, player := range that.Players {
		if player.ID == id {
			return player
		}
	}
	return nil
}

// Winner returns the winning player, or nil while nobody has won.
func (that *Game) Winner() *Player {
	outcome := rings.CurrentOutcome(that.State)
	if outcome.Status != rings.Won {
		return nil
	}
	return that.PlayerBySeat(outcome.Winner)
}

func (that *Game) GetRandomSeats() (rings.Player, rings.Player) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return rings.First, rings.Second
	}
	return rings.Second, rings.First
}
