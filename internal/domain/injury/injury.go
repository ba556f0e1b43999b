// Package injury holds player injury records and their reconciliation.
package injury

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

// Status values reported by the backend.
const (
	StatusActive     = "active"
	StatusRecovering = "recovering"
	StatusResolved   = "resolved"
)

var (
	ErrPlayerRequired = errors.New("injury: player is required")
	ErrTypeRequired   = errors.New("injury: type is required")
	ErrInvalidStatus  = errors.New("injury: invalid status")
)

// Injury is one reported injury of a player.
type Injury struct {
	ID             wire.Identifier `json:"id"`
	PlayerID       wire.Identifier `json:"playerId"`
	PlayerName     string          `json:"playerName,omitempty"`
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	Severity       string          `json:"severity,omitempty"`
	Status         string          `json:"status"`
	InjuredAt      string          `json:"injuredAt"`
	ExpectedReturn string          `json:"expectedReturn,omitempty"`
	PhotoURL       string          `json:"photoUrl,omitempty"`
	UpdatedAt      string          `json:"updatedAt,omitempty"`
}

// NeedsName reports whether the player name still has to be resolved.
func (i Injury) NeedsName() bool {
	return i.PlayerName == "" || i.PlayerName == string(i.PlayerID)
}

// IsOpen reports whether the injury is not yet resolved.
func (i Injury) IsOpen() bool { return i.Status != StatusResolved }

// Report is the payload for a newly reported injury.
type Report struct {
	PlayerID       wire.Identifier `json:"playerId"`
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	Severity       string          `json:"severity,omitempty"`
	InjuredAt      string          `json:"injuredAt,omitempty"`
	ExpectedReturn string          `json:"expectedReturn,omitempty"`
	PhotoURL       string          `json:"photoUrl,omitempty"`
}

// Validate checks the fields the backend requires.
func (r Report) Validate() error {
	if r.PlayerID.IsZero() {
		return ErrPlayerRequired
	}
	if strings.TrimSpace(r.Type) == "" {
		return ErrTypeRequired
	}
	return nil
}

// ValidStatus reports whether s is a known status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusRecovering, StatusResolved:
		return true
	}
	return false
}

func key(i Injury) wire.Identifier { return i.ID }

// Upsert inserts or replaces injuries by id, keeping the newest first.
func Upsert(list []Injury, items ...Injury) []Injury {
	return Sort(reconcile.Merge(list, items, key))
}

// Sort orders open injuries before resolved ones, each newest first.
func Sort(list []Injury) []Injury {
	return reconcile.Sorted(list, func(a, b Injury) bool {
		if a.IsOpen() != b.IsOpen() {
			return a.IsOpen()
		}
		return a.InjuredAt > b.InjuredAt
	})
}

// SetPlayerName returns i with the resolved player name.
func SetPlayerName(i Injury, name string) Injury {
	i.PlayerName = name
	return i
}

// PlayerKey returns the lookup key used to resolve the player name.
func PlayerKey(i Injury) wire.Identifier { return i.PlayerID }

// DecodeInjury decodes one injury object.
func DecodeInjury(obj gjson.Result) (Injury, error) {
	if !obj.IsObject() {
		return Injury{}, &wire.DecodeError{Field: "injury", Reason: "expected an object"}
	}
	id, err := wire.RequiredID(obj, "_id", "id")
	if err != nil {
		return Injury{}, err
	}
	player, err := wire.RequiredID(obj, "playerId", "player")
	if err != nil {
		return Injury{}, err
	}
	injuredAt, err := wire.RequiredTime(obj, "injuredAt", "date", "createdAt")
	if err != nil {
		return Injury{}, err
	}
	name := wire.OptionalString(obj, "playerName")
	if name == "" {
		if p, key := wire.Field(obj, "player"); key != "" && p.IsObject() {
			name = wire.OptionalString(p, "name", "fullName", "displayName")
		}
	}
	status := strings.ToLower(wire.OptionalString(obj, "status"))
	if !ValidStatus(status) {
		status = StatusActive
	}
	return Injury{
		ID:             id,
		PlayerID:       player,
		PlayerName:     name,
		Type:           wire.OptionalString(obj, "type", "injuryType", "title"),
		Description:    wire.OptionalString(obj, "description", "notes"),
		Severity:       wire.OptionalString(obj, "severity"),
		Status:         status,
		InjuredAt:      injuredAt,
		ExpectedReturn: wire.OptionalTime(obj, "expectedReturn", "expectedRecovery"),
		PhotoURL:       wire.OptionalString(obj, "photoUrl", "imageUrl", "photo"),
		UpdatedAt:      wire.OptionalTime(obj, "updatedAt"),
	}, nil
}

// DecodeInjuries decodes a list payload; a bad item fails the response.
func DecodeInjuries(raw []byte) ([]Injury, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return nil, err
	}
	items, err := wire.Items(root, "injuries")
	if err != nil {
		return nil, err
	}
	out := make([]Injury, 0, len(items))
	for i, item := range items {
		inj, err := DecodeInjury(item)
		if err != nil {
			return nil, fmt.Errorf("injury: item %d: %w", i, err)
		}
		out = append(out, inj)
	}
	return Sort(reconcile.Dedupe(out, key)), nil
}

// DecodeOne decodes a single injury, bare or under "injury"/"data".
func DecodeOne(raw []byte) (Injury, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return Injury{}, err
	}
	obj, err := wire.Object(root, "injury", "data")
	if err != nil {
		return Injury{}, err
	}
	return DecodeInjury(obj)
}
