// Package roster holds team players and the add/remove reconciliation.
package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

var (
	ErrNameRequired = errors.New("roster: player name is required")
	ErrTeamRequired = errors.New("roster: team is required")
)

// Player is a member of a team roster.
type Player struct {
	ID        wire.Identifier `json:"id"`
	TeamID    wire.Identifier `json:"teamId,omitempty"`
	Name      string          `json:"name"`
	Position  string          `json:"position,omitempty"`
	Number    int             `json:"number,omitempty"`
	BirthDate string          `json:"birthDate,omitempty"`
}

// NewPlayer is the payload for adding a player to a team.
type NewPlayer struct {
	Name      string `json:"name"`
	Position  string `json:"position,omitempty"`
	Number    int    `json:"number,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// Validate checks the fields the backend requires.
func (p NewPlayer) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

func key(p Player) wire.Identifier { return p.ID }

// Add upserts players by id and keeps the roster ordered.
func Add(list []Player, players ...Player) []Player {
	return Sort(reconcile.Merge(list, players, key))
}

// Remove drops the player with id.
func Remove(list []Player, id wire.Identifier) []Player {
	return reconcile.Remove(list, id, key)
}

// Sort orders by shirt number, players without one last, then by name.
func Sort(list []Player) []Player {
	return reconcile.Sorted(list, func(a, b Player) bool {
		an, bn := a.Number > 0, b.Number > 0
		switch {
		case an && bn && a.Number != b.Number:
			return a.Number < b.Number
		case an != bn:
			return an
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// DecodePlayer decodes one player. A populated "user" object may carry the name.
func DecodePlayer(obj gjson.Result) (Player, error) {
	if !obj.IsObject() {
		return Player{}, &wire.DecodeError{Field: "player", Reason: "expected an object"}
	}
	id, err := wire.RequiredID(obj, "_id", "id", "playerId")
	if err != nil {
		return Player{}, err
	}
	name := wire.OptionalString(obj, "name", "fullName")
	if name == "" {
		if user, key := wire.Field(obj, "user"); key != "" {
			name = wire.OptionalString(user, "name", "fullName", "displayName")
		}
	}
	if name == "" {
		first := wire.OptionalString(obj, "firstName")
		last := wire.OptionalString(obj, "lastName")
		name = strings.TrimSpace(first + " " + last)
	}
	return Player{
		ID:        id,
		TeamID:    wire.OptionalID(obj, "teamId", "team"),
		Name:      name,
		Position:  wire.OptionalString(obj, "position"),
		Number:    wire.OptionalInt(obj, "number", "jerseyNumber", "shirtNumber"),
		BirthDate: wire.OptionalTime(obj, "birthDate", "dateOfBirth"),
	}, nil
}

// DecodePlayers decodes a roster payload.
func DecodePlayers(raw []byte) ([]Player, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return nil, err
	}
	items, err := wire.Items(root, "players")
	if err != nil {
		return nil, err
	}
	out := make([]Player, 0, len(items))
	for i, item := range items {
		p, err := DecodePlayer(item)
		if err != nil {
			return nil, fmt.Errorf("roster: player %d: %w", i, err)
		}
		out = append(out, p)
	}
	return Sort(reconcile.Dedupe(out, key)), nil
}

// DecodeOne decodes a single player, bare or under "player"/"data".
func DecodeOne(raw []byte) (Player, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return Player{}, err
	}
	obj, err := wire.Object(root, "player", "data")
	if err != nil {
		return Player{}, err
	}
	return DecodePlayer(obj)
}
