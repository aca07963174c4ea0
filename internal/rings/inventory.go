package rings

// RingsPerSize is how many rings of each size a player starts with.
const RingsPerSize = 3

// Inventory is the remaining supply of rings, per player and size.
type Inventory struct {
	First  [numSizes]int `json:"first"`
	Second [numSizes]int `json:"second"`
}

func NewInventory() Inventory {
	full := [numSizes]int{RingsPerSize, RingsPerSize, RingsPerSize}
	return Inventory{First: full, Second: full}
}

func (that *Inventory) supply(player Player) *[numSizes]int {
	switch player {
	case First:
		return &that.First
	case Second:
		return &that.Second
	default:
		return nil
	}
}

// Remaining returns how many rings of size the player can still place.
func (that *Inventory) Remaining(player Player, size Size) int {
	supply := that.supply(player)
	if supply == nil || !size.Valid() {
		return 0
	}
	return supply[size]
}

// Consume takes one ring of size from the player's supply.
// Callers check Remaining first.
func (that *Inventory) Consume(player Player, size Size) {
	supply := that.supply(player)
	if supply == nil || supply[size] == 0 {
		return
	}
	supply[size]--
}

// Empty reports whether the player has no rings left at all.
func (that *Inventory) Empty(player Player) bool {
	for _, size := range Sizes {
		if that.Remaining(player, size) > 0 {
			return false
		}
	}
	return true
}
