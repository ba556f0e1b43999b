// Package stadium decodes the venues list.
package stadium

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

// Location is a geographic point. Valid is false when the backend sent no
// usable coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Valid     bool    `json:"valid"`
}

// Stadium is a venue matches are played at.
type Stadium struct {
	ID       wire.Identifier `json:"id"`
	Name     string          `json:"name"`
	City     string          `json:"city,omitempty"`
	Address  string          `json:"address,omitempty"`
	Capacity int             `json:"capacity,omitempty"`
	Surface  string          `json:"surface,omitempty"`
	Location Location        `json:"location"`
}

// DecodeStadium decodes one stadium. Coordinates may be numbers or numeric
// strings, at the top level, under "location", or as a GeoJSON point.
func DecodeStadium(obj gjson.Result) (Stadium, error) {
	if !obj.IsObject() {
		return Stadium{}, &wire.DecodeError{Field: "stadium", Reason: "expected an object"}
	}
	id, err := wire.RequiredID(obj, "_id", "id")
	if err != nil {
		return Stadium{}, err
	}
	name, err := wire.RequiredString(obj, "name")
	if err != nil {
		return Stadium{}, err
	}
	return Stadium{
		ID:       id,
		Name:     strings.TrimSpace(name),
		City:     wire.OptionalString(obj, "city"),
		Address:  wire.OptionalString(obj, "address"),
		Capacity: wire.OptionalInt(obj, "capacity"),
		Surface:  wire.OptionalString(obj, "surface"),
		Location: decodeLocation(obj),
	}, nil
}

func decodeLocation(obj gjson.Result) Location {
	if loc, ok := latLng(obj); ok {
		return loc
	}
	nested, key := wire.Field(obj, "location", "coordinates", "geo")
	if key == "" {
		return Location{}
	}
	if loc, ok := latLng(nested); ok {
		return loc
	}
	// GeoJSON order is [longitude, latitude].
	points := nested.Get("coordinates")
	if !points.IsArray() {
		points = nested
	}
	if arr := points.Array(); len(arr) == 2 {
		return Location{Latitude: arr[1].Float(), Longitude: arr[0].Float(), Valid: true}
	}
	return Location{}
}

func latLng(obj gjson.Result) (Location, bool) {
	lat, okLat := wire.OptionalFloat(obj, "latitude", "lat")
	lng, okLng := wire.OptionalFloat(obj, "longitude", "lng", "lon")
	if !okLat || !okLng {
		return Location{}, false
	}
	return Location{Latitude: lat, Longitude: lng, Valid: true}, true
}

// DecodeStadiums decodes a list payload sorted by name.
func DecodeStadiums(raw []byte) ([]Stadium, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return nil, err
	}
	items, err := wire.Items(root, "stadiums")
	if err != nil {
		return nil, err
	}
	out := make([]Stadium, 0, len(items))
	for i, item := range items {
		s, err := DecodeStadium(item)
		if err != nil {
			return nil, fmt.Errorf("stadium: item %d: %w", i, err)
		}
		out = append(out, s)
	}
	return Sort(reconcile.Dedupe(out, func(s Stadium) wire.Identifier { return s.ID })), nil
}

// Sort orders stadiums by name, case-insensitively.
func Sort(list []Stadium) []Stadium {
	return reconcile.Sorted(list, reconcile.Ascending(func(s Stadium) string { return strings.ToLower(s.Name) }))
}
