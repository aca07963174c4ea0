package rings

// Line is three positions read in a fixed order.
type Line [3]Position

// Lines are the 8 lines of the board: rows left to right, columns top to
// bottom, then the top-left and top-right diagonals.
var Lines = [8]Line{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Win describes a completed pattern and where it sits on the board.
type Win struct {
	Pattern   PatternKind `json:"pattern"`
	Positions []Position  `json:"positions"`
}

// Evaluate reports whether move completed a pattern for move.Player.
// When one placement completes several patterns, the first in the order
// FullStack, SameSize, Sequence is reported.
func Evaluate(board *Board, move Move) (Win, bool) {
	player := move.Player

	if board.StackOwners(move.Position) == (Cell{player, player, player}) {
		return Win{Pattern: FullStack, Positions: []Position{move.Position}}, true
	}

	for _, line := range Lines {
		if sameSizeLine(board, line, player, move.Size) {
			return Win{Pattern: SameSize, Positions: line[:]}, true
		}
	}

	for _, line := range Lines {
		if sequenceLine(board, line, player) {
			return Win{Pattern: Sequence, Positions: line[:]}, true
		}
	}

	return Win{}, false
}

func sameSizeLine(board *Board, line Line, player Player, size Size) bool {
	for _, pos := range line {
		if board.Occupant(pos, size) != player {
			return false
		}
	}
	return true
}

// sequenceLine looks for Small, Medium, Large (or the reverse) along line,
// each cell contributing any one size the player owns there.
func sequenceLine(board *Board, line Line, player Player) bool {
	for _, a := range Sizes {
		if board.Occupant(line[0], a) != player {
			continue
		}
		for _, b := range Sizes {
			if board.Occupant(line[1], b) != player {
				continue
			}
			for _, c := range Sizes {
				if board.Occupant(line[2], c) != player {
					continue
				}
				if monotonic(a, b, c) {
					return true
				}
			}
		}
	}
	return false
}

func monotonic(a, b, c Size) bool {
	return (a < b && b < c) || (a > b && b > c)
}
