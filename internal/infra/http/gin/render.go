package ginserver

import (
	"encoding/json"
	"time"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"academy/internal/infra/storage/memory"
)

// Records leave the backend in the shapes the real service produces:
// messages, injuries and tournaments as relaxed extended JSON with $oid and
// $date wrappers; users, players and stadiums as plain JSON with string ids.

func extJSON(doc any) (json.RawMessage, error) {
	out, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}

func extJSONList[T any](docs []T) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		raw, err := extJSON(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func renderUser(u memory.User) gin.H {
	out := gin.H{"_id": u.ID.Hex(), "name": u.Name, "email": u.Email, "role": u.Role}
	if !u.TeamID.IsZero() {
		out["teamId"] = u.TeamID.Hex()
	}
	return out
}

func renderPlayer(p memory.Player) gin.H {
	out := gin.H{
		"_id":       p.ID.Hex(),
		"teamId":    p.TeamID.Hex(),
		"firstName": p.FirstName,
		"lastName":  p.LastName,
	}
	if p.Position != "" {
		out["position"] = p.Position
	}
	if p.Number > 0 {
		out["number"] = p.Number
	}
	if p.BirthDate != nil {
		out["birthDate"] = p.BirthDate.UTC().Format(time.DateOnly)
	}
	return out
}

func renderStadium(s memory.Stadium) gin.H {
	out := gin.H{
		"id":       s.ID.Hex(),
		"name":     s.Name,
		"city":     s.City,
		"capacity": s.Capacity,
		"surface":  s.Surface,
	}
	if s.Address != "" {
		out["address"] = s.Address
	}
	if s.GeoJSON {
		out["location"] = gin.H{"type": "Point", "coordinates": []float64{s.Longitude, s.Latitude}}
	} else {
		out["lat"] = s.Latitude
		out["lng"] = s.Longitude
	}
	return out
}
