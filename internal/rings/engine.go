// Package rings is the game-state engine for Three: two players stack Small,
// Medium and Large rings on a 3x3 board until one of them completes a full
// stack, a same-size line or a size sequence along a line.
//
// GameState is a plain value. SubmitMove returns a new state and leaves its
// argument untouched, so a rejected move never changes anything.
package rings

import "slices"

// Outcome is InProgress, Won(Winner, Pattern) or Drawn.
type Outcome struct {
	Status    Status      `json:"status"`
	Winner    Player      `json:"winner,omitempty"`
	Pattern   PatternKind `json:"pattern,omitempty"`
	Positions []Position  `json:"positions,omitempty"`
}

func (o Outcome) Terminal() bool {
	return o.Status != InProgress
}

// GameState is everything needed to continue a game.
type GameState struct {
	Board     Board     `json:"board"`
	Inventory Inventory `json:"inventory"`
	Turn      Player    `json:"turn"`
	Outcome   Outcome   `json:"outcome"`
	History   []Move    `json:"history,omitempty"`
}

// NewGame returns an empty board, full inventories and First to move.
func NewGame() GameState {
	return GameState{
		Inventory: NewInventory(),
		Turn:      First,
		Outcome:   Outcome{Status: InProgress},
	}
}

// SubmitMove validates and applies one placement.
// On error the returned state is the input state.
func SubmitMove(state GameState, player Player, pos Position, size Size) (GameState, error) {
	move, err := Validate(&state, player, pos, size)
	if err != nil {
		return state, err
	}

	return apply(state, move), nil
}

func apply(state GameState, move Move) GameState {
	next := state
	next.History = append(slices.Clone(state.History), move)

	next.Inventory.Consume(move.Player, move.Size)
	next.Board.Place(move.Position, move.Size, move.Player)

	if win, ok := Evaluate(&next.Board, move); ok {
		next.Outcome = Outcome{
			Status:    Won,
			Winner:    move.Player,
			Pattern:   win.Pattern,
			Positions: win.Positions,
		}
		next.Turn = NoPlayer

		return next
	}

	opponent := move.Player.Opponent()

	switch {
	case HasLegalMove(&next, opponent):
		next.Turn = opponent
	case HasLegalMove(&next, move.Player):
		next.Turn = move.Player
	default:
		next.Outcome = Outcome{Status: Drawn}
		next.Turn = NoPlayer
	}

	return next
}

// LegalMoves lists every placement player could make in state, regardless of
// whose turn it is. A finished game has none.
func LegalMoves(state GameState, player Player) []Placement {
	if state.Outcome.Terminal() || !player.Valid() {
		return nil
	}

	var moves []Placement
	for _, pos := range Positions {
		for _, size := range Sizes {
			if legal(&state, player, pos, size) {
				moves = append(moves, Placement{Position: pos, Size: size})
			}
		}
	}

	return moves
}

// HasLegalMove reports whether player has at least one placement left.
func HasLegalMove(state *GameState, player Player) bool {
	if !player.Valid() {
		return false
	}

	for _, size := range Sizes {
		if state.Inventory.Remaining(player, size) > 0 && state.Board.HasEmpty(size) {
			return true
		}
	}

	return false
}

func CurrentOutcome(state GameState) Outcome {
	return state.Outcome
}
