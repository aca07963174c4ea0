package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/three-backend/internal/entity"
	"github.com/rocketscienceinc/three-backend/internal/rings"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Token  string         `json:"token,omitempty"`
	Turn   *Turn          `json:"turn,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// Turn is a placement request: a ring size for a board position.
// Fields are pointers so a missing key is told apart from a zero value.
type Turn struct {
	Position *Cell       `json:"position"`
	Size     *rings.Size `json:"size"`
}

type Cell struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

// placement reports false unless the position and size were both sent in full.
func (that *Turn) placement() (rings.Position, rings.Size, bool) {
	if that.Position == nil || that.Position.Row == nil || that.Position.Col == nil || that.Size == nil {
		return rings.Position{}, 0, false
	}

	return rings.Position{Row: *that.Position.Row, Col: *that.Position.Col}, *that.Size, true
}

func encodeMessage(action string, payload Payload) ([]byte, error) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: rawPayload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return data, nil
}
