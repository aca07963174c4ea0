package entity

import "github.com/rocketscienceinc/three-backend/internal/rings"

const botIDPrefix = "bot-"

type Player struct {
	ID     string       `json:"id"`
	Seat   rings.Player `json:"seat,omitempty"`
	GameID string       `json:"game_id,omitempty"`
	Bot    bool         `json:"bot,omitempty"`
}

func NewBotPlayer(gameID string, seat rings.Player) *Player {
	return &Player{
		ID:     botIDPrefix + gameID,
		Seat:   seat,
		GameID: gameID,
		Bot:    true,
	}
}

func (that *Player) IsBot() bool {
	return that.Bot
}

// Leave frees the player from its current game.
func (that *Player) Leave() {
	that.GameID = ""
	that.Seat = rings.NoPlayer
}
