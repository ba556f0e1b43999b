package screens

import (
	"net/url"

	"academy/internal/domain/wire"
)

const (
	pathMessages    = "/api/messages"
	pathMarkRead    = "/api/messages/read"
	pathInjuries    = "/api/injuries"
	pathStadiums    = "/api/stadiums"
	pathTournaments = "/api/tournaments"
)

func conversationsPath(user wire.Identifier) string {
	return "/api/messages/conversations/" + url.PathEscape(user.String())
}

func threadPath(user, other wire.Identifier) string {
	return "/api/messages/" + url.PathEscape(user.String()) + "/" + url.PathEscape(other.String())
}

func injuriesPath(player wire.Identifier) string {
	if player.IsZero() {
		return pathInjuries
	}
	return pathInjuries + "?" + url.Values{"playerId": {player.String()}}.Encode()
}

func injuryPath(id wire.Identifier) string {
	return pathInjuries + "/" + url.PathEscape(id.String())
}

func teamPlayersPath(team wire.Identifier) string {
	return "/api/teams/" + url.PathEscape(team.String()) + "/players"
}

func teamPlayerPath(team, player wire.Identifier) string {
	return teamPlayersPath(team) + "/" + url.PathEscape(player.String())
}
