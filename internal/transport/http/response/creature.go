package response

import (
	"encoding/json"
	"time"

	"github.com/daffahilmyf/creature-catalog/internal/domain/entity"
)

// Creature is the public view of a stored creature. Only a few payload
// sub-documents are exposed; they are copied through without decoding.
type Creature struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Types     json.RawMessage `json:"types"`
	Sprites   json.RawMessage `json:"sprites"`
	Abilities json.RawMessage `json:"abilities"`
	Stats     json.RawMessage `json:"stats"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

var nullJSON = json.RawMessage("null")

func NewCreature(c entity.Creature) Creature {
	var doc map[string]json.RawMessage
	_ = json.Unmarshal(c.Payload, &doc)
	field := func(name string) json.RawMessage {
		if raw, ok := doc[name]; ok && len(raw) > 0 {
			return raw
		}
		return nullJSON
	}
	return Creature{
		ID:        c.ID.String(),
		Name:      c.Name,
		Types:     field("types"),
		Sprites:   field("sprites"),
		Abilities: field("abilities"),
		Stats:     field("stats"),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NewCreatureList(creatures []entity.Creature) CreatureListResponse {
	out := make([]Creature, 0, len(creatures))
	for _, c := range creatures {
		out = append(out, NewCreature(c))
	}
	return CreatureListResponse{Count: len(out), Creatures: out}
}
