package screens

import (
	"context"

	"academy/internal/app/ports"
	"academy/internal/app/resource"
	"academy/internal/domain/roster"
	"academy/internal/domain/wire"
)

// Roster drives the player list of one team.
type Roster struct {
	deps Deps
	team wire.Identifier

	players *resource.Slot[[]roster.Player]
	action  *resource.Slot[wire.Identifier]
}

func NewRoster(deps Deps, team wire.Identifier) *Roster {
	return &Roster{
		deps:    deps,
		team:    team,
		players: resource.NewSlot[[]roster.Player](),
		action:  resource.NewSlot[wire.Identifier](),
	}
}

func (c *Roster) Players() *resource.Slot[[]roster.Player] { return c.players }

// ActionState carries the id of the player last added or removed.
func (c *Roster) ActionState() *resource.Slot[wire.Identifier] { return c.action }

// Load fetches the team's players.
func (c *Roster) Load(ctx context.Context) error {
	if c.team.IsZero() {
		return roster.ErrTeamRequired
	}
	load(ctx, c.deps, c.players, teamPlayersPath(c.team), roster.DecodePlayers)
	return nil
}

// AddPlayer creates a player on the team and upserts the server's record.
func (c *Roster) AddPlayer(ctx context.Context, player roster.NewPlayer) error {
	if c.team.IsZero() {
		return roster.ErrTeamRequired
	}
	if err := player.Validate(); err != nil {
		return err
	}
	ticket := c.action.Begin()
	c.deps.call(ctx, ports.MethodPost, teamPlayersPath(c.team), player, func(raw []byte, err error) {
		if err != nil {
			c.action.Reject(ticket, ports.UserMessage(err))
			return
		}
		created, err := roster.DecodeOne(raw)
		if err != nil {
			c.action.Reject(ticket, err.Error())
			return
		}
		c.players.Mutate(func(current []roster.Player) []roster.Player {
			return roster.Add(current, created)
		})
		c.action.Resolve(ticket, created.ID)
	})
	return nil
}

// RemovePlayer deletes a player from the team. The list changes only after
// the backend confirms.
func (c *Roster) RemovePlayer(ctx context.Context, id wire.Identifier) error {
	if c.team.IsZero() {
		return roster.ErrTeamRequired
	}
	ticket := c.action.Begin()
	c.deps.call(ctx, ports.MethodDelete, teamPlayerPath(c.team, id), nil, func(_ []byte, err error) {
		if err != nil {
			c.action.Reject(ticket, ports.UserMessage(err))
			return
		}
		c.players.Mutate(func(current []roster.Player) []roster.Player {
			return roster.Remove(current, id)
		})
		c.action.Resolve(ticket, id)
	})
	return nil
}
