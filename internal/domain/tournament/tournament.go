// Package tournament decodes tournaments and their match schedules, where
// team references arrive as plain ids, object-id wrappers or populated
// team documents.
package tournament

import (
	"fmt"

	"github.com/tidwall/gjson"

	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

// TeamRef points at a team. Name is empty when the reference was not populated.
type TeamRef struct {
	ID   wire.Identifier `json:"id"`
	Name string          `json:"name,omitempty"`
}

// Label returns the team name or its id.
func (t TeamRef) Label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID.String()
}

// Score is a final or running result.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Match is one fixture of a tournament.
type Match struct {
	ID      wire.Identifier `json:"id"`
	Home    TeamRef         `json:"home"`
	Away    TeamRef         `json:"away"`
	Kickoff string          `json:"kickoff"`
	Venue   wire.Identifier `json:"venue,omitempty"`
	Status  string          `json:"status,omitempty"`
	Score   *Score          `json:"score,omitempty"`
}

// Tournament groups teams and matches.
type Tournament struct {
	ID        wire.Identifier `json:"id"`
	Name      string          `json:"name"`
	StartDate string          `json:"startDate,omitempty"`
	EndDate   string          `json:"endDate,omitempty"`
	Teams     []TeamRef       `json:"teams,omitempty"`
	Matches   []Match         `json:"matches,omitempty"`
}

// DecodeTeamRef accepts a plain id, an object-id wrapper, or a populated team.
func DecodeTeamRef(value gjson.Result) (TeamRef, error) {
	id, err := wire.IdentifierFrom(value)
	if err != nil {
		return TeamRef{}, err
	}
	ref := TeamRef{ID: id}
	if value.IsObject() {
		ref.Name = wire.OptionalString(value, "name", "teamName")
	}
	return ref, nil
}

// DecodeMatch decodes one match.
func DecodeMatch(obj gjson.Result) (Match, error) {
	if !obj.IsObject() {
		return Match{}, &wire.DecodeError{Field: "match", Reason: "expected an object"}
	}
	id, err := wire.RequiredID(obj, "_id", "id")
	if err != nil {
		return Match{}, err
	}
	home, err := teamField(obj, "homeTeam", "home", "teamA")
	if err != nil {
		return Match{}, err
	}
	away, err := teamField(obj, "awayTeam", "away", "teamB")
	if err != nil {
		return Match{}, err
	}
	kickoff, err := wire.RequiredTime(obj, "date", "kickoff", "startTime", "scheduledAt")
	if err != nil {
		return Match{}, err
	}
	m := Match{
		ID:      id,
		Home:    home,
		Away:    away,
		Kickoff: kickoff,
		Venue:   wire.OptionalID(obj, "stadium", "stadiumId", "venue"),
		Status:  wire.OptionalString(obj, "status"),
	}
	if score, key := wire.Field(obj, "score", "result"); key != "" && score.IsObject() {
		m.Score = &Score{
			Home: wire.OptionalInt(score, "home", "homeScore"),
			Away: wire.OptionalInt(score, "away", "awayScore"),
		}
	} else if _, key := wire.Field(obj, "homeScore"); key != "" {
		m.Score = &Score{Home: wire.OptionalInt(obj, "homeScore"), Away: wire.OptionalInt(obj, "awayScore")}
	}
	return m, nil
}

func teamField(obj gjson.Result, keys ...string) (TeamRef, error) {
	value, key := wire.Field(obj, keys...)
	if key == "" {
		return TeamRef{}, &wire.DecodeError{Field: keys[0], Reason: "missing"}
	}
	ref, err := DecodeTeamRef(value)
	if err != nil {
		return TeamRef{}, wire.WithField(err, key)
	}
	return ref, nil
}

// DecodeTournament decodes one tournament and orders its matches by kickoff.
func DecodeTournament(obj gjson.Result) (Tournament, error) {
	if !obj.IsObject() {
		return Tournament{}, &wire.DecodeError{Field: "tournament", Reason: "expected an object"}
	}
	id, err := wire.RequiredID(obj, "_id", "id")
	if err != nil {
		return Tournament{}, err
	}
	name, err := wire.RequiredString(obj, "name", "title")
	if err != nil {
		return Tournament{}, err
	}
	t := Tournament{
		ID:        id,
		Name:      name,
		StartDate: wire.OptionalTime(obj, "startDate"),
		EndDate:   wire.OptionalTime(obj, "endDate"),
	}
	if teams, key := wire.Field(obj, "teams"); key != "" {
		for i, item := range teams.Array() {
			ref, err := DecodeTeamRef(item)
			if err != nil {
				return Tournament{}, fmt.Errorf("teams[%d]: %w", i, err)
			}
			t.Teams = append(t.Teams, ref)
		}
	}
	if matches, key := wire.Field(obj, "matches", "fixtures"); key != "" {
		for i, item := range matches.Array() {
			m, err := DecodeMatch(item)
			if err != nil {
				return Tournament{}, fmt.Errorf("matches[%d]: %w", i, err)
			}
			t.Matches = append(t.Matches, m)
		}
	}
	t.Matches = SortMatches(reconcile.Dedupe(t.Matches, func(m Match) wire.Identifier { return m.ID }))
	t.Matches = fillTeamNames(t.Matches, t.Teams)
	return t, nil
}

// fillTeamNames names unpopulated match teams from the tournament's team list.
func fillTeamNames(matches []Match, teams []TeamRef) []Match {
	names := make(map[wire.Identifier]string, len(teams))
	for _, team := range teams {
		if team.Name != "" {
			names[team.ID] = team.Name
		}
	}
	for i := range matches {
		if matches[i].Home.Name == "" {
			matches[i].Home.Name = names[matches[i].Home.ID]
		}
		if matches[i].Away.Name == "" {
			matches[i].Away.Name = names[matches[i].Away.ID]
		}
	}
	return matches
}

// SortMatches orders matches by kickoff, earliest first.
func SortMatches(list []Match) []Match {
	return reconcile.Sorted(list, reconcile.Ascending(func(m Match) string { return m.Kickoff }))
}

// DecodeTournaments decodes a list payload, newest start date first.
func DecodeTournaments(raw []byte) ([]Tournament, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return nil, err
	}
	items, err := wire.Items(root, "tournaments")
	if err != nil {
		return nil, err
	}
	out := make([]Tournament, 0, len(items))
	for i, item := range items {
		t, err := DecodeTournament(item)
		if err != nil {
			return nil, fmt.Errorf("tournament: item %d: %w", i, err)
		}
		out = append(out, t)
	}
	return reconcile.Sorted(out, reconcile.Descending(func(t Tournament) string { return t.StartDate })), nil
}

// Upcoming returns the matches of t kicking off at or after now (canonical form).
func Upcoming(t Tournament, now string) []Match {
	var out []Match
	for _, m := range t.Matches {
		if m.Kickoff >= now {
			out = append(out, m)
		}
	}
	return out
}
