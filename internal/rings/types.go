package rings

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPosition = errors.New("invalid board position")
	ErrInvalidSize     = errors.New("invalid ring size")
	ErrInvalidPlayer   = errors.New("invalid player")
)

// Size is a ring size. Sizes are ordered: Small < Medium < Large.
type Size uint8

const (
	Small Size = iota
	Medium
	Large
)

const numSizes = 3

// Sizes lists every size in ascending order.
var Sizes = [numSizes]Size{Small, Medium, Large}

func (s Size) Valid() bool {
	return s <= Large
}

func (s Size) String() string {
	switch s {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("size(%d)", uint8(s))
	}
}

func (s Size) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Size) UnmarshalText(text []byte) error {
	parsed, err := ParseSize(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseSize(value string) (Size, error) {
	for _, size := range Sizes {
		if size.String() == value {
			return size, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSize, value)
}

// Player owns rings. The zero value NoPlayer marks an empty slot.
type Player uint8

const (
	NoPlayer Player = iota
	First
	Second
)

func (p Player) Valid() bool {
	return p == First || p == Second
}

// Opponent returns the other player. NoPlayer has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case First:
		return Second
	case Second:
		return First
	default:
		return NoPlayer
	}
}

func (p Player) String() string {
	switch p {
	case NoPlayer:
		return ""
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return fmt.Sprintf("player(%d)", uint8(p))
	}
}

func (p Player) MarshalText() ([]byte, error) {
	if p != NoPlayer && !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, uint8(p))
	}
	return []byte(p.String()), nil
}

func (p *Player) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = NoPlayer
		return nil
	}
	parsed, err := ParsePlayer(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParsePlayer(value string) (Player, error) {
	switch value {
	case "first":
		return First, nil
	case "second":
		return Second, nil
	default:
		return NoPlayer, fmt.Errorf("%w: %q", ErrInvalidPlayer, value)
	}
}

// Position is a cell coordinate on the 3x3 board.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < boardSide && p.Col >= 0 && p.Col < boardSide
}

func (p Position) index() int {
	return p.Row*boardSide + p.Col
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// PatternKind names the winning pattern.
type PatternKind uint8

const (
	NoPattern PatternKind = iota
	FullStack
	SameSize
	Sequence
)

func (k PatternKind) String() string {
	switch k {
	case NoPattern:
		return ""
	case FullStack:
		return "full_stack"
	case SameSize:
		return "same_size"
	case Sequence:
		return "sequence"
	default:
		return fmt.Sprintf("pattern(%d)", uint8(k))
	}
}

func (k PatternKind) MarshalText() ([]byte, error) {
	if k > Sequence {
		return nil, fmt.Errorf("unknown pattern kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *PatternKind) UnmarshalText(text []byte) error {
	for _, kind := range []PatternKind{NoPattern, FullStack, SameSize, Sequence} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown pattern kind %q", string(text))
}

// Status is the state machine position of a game.
type Status uint8

const (
	InProgress Status = iota
	Won
	Drawn
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Drawn:
		return "drawn"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if s > Drawn {
		return nil, fmt.Errorf("unknown status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	for _, status := range []Status{InProgress, Won, Drawn} {
		if status.String() == string(text) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", string(text))
}
