package screens

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"academy/internal/app/enrich"
	"academy/internal/app/ports"
	"academy/internal/app/resource"
	"academy/internal/domain/injury"
	"academy/internal/domain/wire"
)

// Photo is an image attached to an injury report.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Injuries drives the injury list of one player, or of everyone.
type Injuries struct {
	deps Deps

	list   *resource.Slot[[]injury.Injury]
	action *resource.Slot[injury.Injury]
	player wire.Identifier
}

// NewInjuries returns an idle controller.
func NewInjuries(deps Deps) *Injuries {
	return &Injuries{
		deps:   deps,
		list:   resource.NewSlot[[]injury.Injury](),
		action: resource.NewSlot[injury.Injury](),
	}
}

// List is the injuries resource.
func (c *Injuries) List() *resource.Slot[[]injury.Injury] { return c.list }

// ActionState carries the outcome of the latest report or status change.
func (c *Injuries) ActionState() *resource.Slot[injury.Injury] { return c.action }

// Load fetches injuries of player; the zero id lists every injury. Player
// names missing from the payload are resolved in the background.
func (c *Injuries) Load(ctx context.Context, player wire.Identifier) {
	c.player = player
	ticket := c.list.Begin()
	c.deps.call(ctx, ports.MethodGet, injuriesPath(player), nil, func(raw []byte, err error) {
		if err != nil {
			c.list.Reject(ticket, ports.UserMessage(err))
			return
		}
		list, err := injury.DecodeInjuries(raw)
		if err != nil {
			c.list.Reject(ticket, err.Error())
			return
		}
		if !c.list.Resolve(ticket, list) {
			return
		}
		tasks := enrich.Plan(list, injury.Injury.NeedsName, injury.PlayerKey)
		c.deps.coordinator().Run(ctx, tasks, func(report enrich.Report) {
			c.list.Refine(ticket, func(current []injury.Injury) []injury.Injury {
				return enrich.Apply(current, report, injury.PlayerKey, injury.SetPlayerName)
			})
		})
	})
}

// ReportInjury uploads the optional photo, posts the report and upserts the
// created record into the list.
func (c *Injuries) ReportInjury(ctx context.Context, report injury.Report, photo *Photo) error {
	if err := report.Validate(); err != nil {
		return err
	}
	if photo != nil && c.deps.Uploader == nil {
		return ErrNoUploader
	}
	ticket := c.action.Begin()
	go func() {
		if photo != nil {
			url, err := c.deps.Uploader.Upload(ctx, photoKey(report.PlayerID, photo), photo.Body, photo.Size, photo.ContentType)
			if err != nil {
				c.deps.Dispatcher.Dispatch(func() {
					c.action.Reject(ticket, fmt.Sprintf("photo upload failed: %v", err))
				})
				return
			}
			report.PhotoURL = url
		}
		c.deps.call(ctx, ports.MethodPost, pathInjuries, report, c.settle(ticket))
	}()
	return nil
}

// SetStatus changes the status of injury id, e.g. to resolve it.
func (c *Injuries) SetStatus(ctx context.Context, id wire.Identifier, status string) error {
	if !injury.ValidStatus(status) {
		return fmt.Errorf("%w: %q", injury.ErrInvalidStatus, status)
	}
	ticket := c.action.Begin()
	c.deps.call(ctx, ports.MethodPatch, injuryPath(id), map[string]string{"status": status}, c.settle(ticket))
	return nil
}

func (c *Injuries) settle(ticket resource.Ticket) func([]byte, error) {
	return func(raw []byte, err error) {
		if err != nil {
			c.action.Reject(ticket, ports.UserMessage(err))
			return
		}
		item, err := injury.DecodeOne(raw)
		if err != nil {
			c.action.Reject(ticket, err.Error())
			return
		}
		if c.player.IsZero() || c.player == item.PlayerID {
			c.list.Mutate(func(current []injury.Injury) []injury.Injury {
				if i := indexOfInjury(current, item.ID); i >= 0 && item.PlayerName == "" {
					item.PlayerName = current[i].PlayerName
				}
				return injury.Upsert(current, item)
			})
		}
		c.action.Resolve(ticket, item)
	}
}

func indexOfInjury(list []injury.Injury, id wire.Identifier) int {
	for i, item := range list {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func photoKey(player wire.Identifier, photo *Photo) string {
	ext := strings.ToLower(path.Ext(photo.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	return "injuries/" + player.String() + "/" + uuid.NewString() + ext
}
