// Package presentation holds display helpers for creature records.
package presentation

import (
	"encoding/json"
	"math/rand/v2"
)

// DefaultImageURL is shown for creatures without any sprite.
const DefaultImageURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/items/poke-ball.png"

// Rand is the randomness ImageURL draws from.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type sprites struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny"`
}

// ImageURL picks the image for a creature's sprites document. With both
// variants present the shiny one is chosen half of the time. A nil rnd uses
// the global source.
func ImageURL(raw json.RawMessage, rnd Rand) string {
	var s sprites
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s.FrontDefault == "" {
		return DefaultImageURL
	}
	if s.FrontShiny == "" {
		return s.FrontDefault
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	if rnd.Float64() < 0.5 {
		return s.FrontShiny
	}
	return s.FrontDefault
}
