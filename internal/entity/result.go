package entity

import (
	"time"

	"github.com/rocketscienceinc/three-backend/internal/rings"
)

// Result is the archived outcome of a finished game.
type Result struct {
	GameID     string            `json:"game_id"`
	Type       string            `json:"type"`
	FirstID    string            `json:"first_id"`
	SecondID   string            `json:"second_id"`
	Status     rings.Status      `json:"status"`
	WinnerID   string            `json:"winner_id,omitempty"`
	Pattern    rings.PatternKind `json:"pattern,omitempty"`
	Moves      int               `json:"moves"`
	FinishedAt time.Time         `json:"finished_at"`
}

// NewResult summarises a finished game.
func NewResult(game *Game, finishedAt time.Time) *Result {
	outcome := rings.CurrentOutcome(game.State)

	result := &Result{
		GameID:     game.ID,
		Type:       game.Type,
		Status:     outcome.Status,
		Pattern:    outcome.Pattern,
		Moves:      len(game.State.History),
		FinishedAt: finishedAt.UTC(),
	}

	if player := game.PlayerBySeat(rings.First); player != nil {
		result.FirstID = player.ID
	}
	if player := game.PlayerBySeat(rings.Second); player != nil {
		result.SecondID = player.ID
	}
	if winner := game.Winner(); winner != nil {
		result.WinnerID = winner.ID
	}

	return result
}
