package rings

const (
	boardSide  = 3
	boardCells = boardSide * boardSide
)

// Cell holds the owner of each ring size at one position.
type Cell [numSizes]Player

// Owner returns the owner of the given size in the cell.
func (c Cell) Owner(size Size) Player {
	return c[size]
}

// Full reports whether every size in the cell has an owner.
func (c Cell) Full() bool {
	for _, owner := range c {
		if owner == NoPlayer {
			return false
		}
	}
	return true
}

// Board maps the 9 positions to their cells, row-major.
type Board [boardCells]Cell

// Positions lists every board position in row-major order.
var Positions = func() [boardCells]Position {
	var positions [boardCells]Position
	for i := range positions {
		positions[i] = Position{Row: i / boardSide, Col: i % boardSide}
	}
	return positions
}()

// Occupant returns who owns size at pos, or NoPlayer.
func (b *Board) Occupant(pos Position, size Size) Player {
	return b[pos.index()][size]
}

// Place sets the owner of size at pos. The slot must be empty; legality is
// checked by Validate before this is called.
func (b *Board) Place(pos Position, size Size, player Player) {
	b[pos.index()][size] = player
}

// StackOwners returns the per-size owners at pos.
func (b *Board) StackOwners(pos Position) Cell {
	return b[pos.index()]
}

// Count returns how many rings of size the player has on the board.
func (b *Board) Count(player Player, size Size) int {
	count := 0
	for _, cell := range b {
		if cell[size] == player {
			count++
		}
	}
	return count
}

// HasEmpty reports whether any position still has size free.
func (b *Board) HasEmpty(size Size) bool {
	for _, cell := range b {
		if cell[size] == NoPlayer {
			return true
		}
	}
	return false
}
