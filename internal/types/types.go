package types

import (
	"encoding/json"

	"github.com/DoyleJ11/arena-hud/internal/dom"
)

// ClientMessage is what a browser page sends.
type ClientMessage struct {
	Type    string          `json:"type"` // "Mount" | "Intent"
	IDs     []string        `json:"ids,omitempty"`
	Seeds   []dom.Seed      `json:"seeds,omitempty"`
	Action  string          `json:"action,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AllSeeds merges plain ids and full seeds.
func (m ClientMessage) AllSeeds() []dom.Seed {
	out := make([]dom.Seed, 0, len(m.IDs)+len(m.Seeds))
	for _, id := range m.IDs {
		out = append(out, dom.Seed{ID: id})
	}
	return append(out, m.Seeds...)
}

type ServerMessage struct {
	Type    string      `json:"type"` // "Snapshot" | "Patch" | "Error"
	Version int         `json:"version"`
	Patches []dom.Patch `json:"patches,omitempty"`
	Error   string      `json:"error,omitempty"`
}
