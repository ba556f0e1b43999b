package screens

import (
	"context"

	"academy/internal/app/ports"
	"academy/internal/app/resource"
	"academy/internal/domain/stadium"
)

// Stadiums drives the venues list.
type Stadiums struct {
	deps Deps
	list *resource.Slot[[]stadium.Stadium]
}

func NewStadiums(deps Deps) *Stadiums {
	return &Stadiums{deps: deps, list: resource.NewSlot[[]stadium.Stadium]()}
}

func (c *Stadiums) List() *resource.Slot[[]stadium.Stadium] { return c.list }

// Load fetches every stadium.
func (c *Stadiums) Load(ctx context.Context) {
	load(ctx, c.deps, c.list, pathStadiums, stadium.DecodeStadiums)
}

// load is the plain fetch-decode-publish cycle shared by list screens
// without enrichment.
func load[T any](ctx context.Context, deps Deps, slot *resource.Slot[T], path string, decode func([]byte) (T, error)) {
	ticket := slot.Begin()
	deps.call(ctx, ports.MethodGet, path, nil, func(raw []byte, err error) {
		if err != nil {
			slot.Reject(ticket, ports.UserMessage(err))
			return
		}
		value, err := decode(raw)
		if err != nil {
			deps.logger().Warn("decode response", "path", path, "error", err)
			slot.Reject(ticket, err.Error())
			return
		}
		slot.Resolve(ticket, value)
	})
}
