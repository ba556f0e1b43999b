package screens

import (
	"context"

	"academy/internal/app/resource"
	"academy/internal/domain/tournament"
)

// Tournaments drives the tournaments and fixtures screen.
type Tournaments struct {
	deps Deps
	list *resource.Slot[[]tournament.Tournament]
}

func NewTournaments(deps Deps) *Tournaments {
	return &Tournaments{deps: deps, list: resource.NewSlot[[]tournament.Tournament]()}
}

func (c *Tournaments) List() *resource.Slot[[]tournament.Tournament] { return c.list }

// Load fetches every tournament with its matches.
func (c *Tournaments) Load(ctx context.Context) {
	load(ctx, c.deps, c.list, pathTournaments, tournament.DecodeTournaments)
}
