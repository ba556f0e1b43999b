package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"academy/internal/app/ports"
	"academy/internal/domain/wire"
)

// DefaultConcurrency bounds simultaneous profile lookups.
const DefaultConcurrency = 8

// Outcome is the settlement state of one lookup.
type Outcome uint8

const (
	Pending Outcome = iota
	Resolved
	Failed
)

// Task is one lookup of a snapshot item's display name.
type Task struct {
	Index   int
	Key     wire.Identifier
	Outcome Outcome
	Name    string
	Err     error
}

// PartialFailure records a single failed lookup. It is absorbed by the
// coordinator and only visible in the Report.
type PartialFailure struct {
	Key wire.Identifier
	Err error
}

func (f PartialFailure) Error() string {
	return fmt.Sprintf("enrich: lookup %s: %v", f.Key, f.Err)
}

func (f PartialFailure) Unwrap() error { return f.Err }

// Report is delivered once every task has settled.
type Report struct {
	Tasks []Task
}

// Names maps each resolved key to its display name.
func (r Report) Names() map[wire.Identifier]string {
	out := make(map[wire.Identifier]string, len(r.Tasks))
	for _, t := range r.Tasks {
		if t.Outcome == Resolved {
			out[t.Key] = t.Name
		}
	}
	return out
}

// Failures lists the lookups that did not resolve.
func (r Report) Failures() []PartialFailure {
	var out []PartialFailure
	for _, t := range r.Tasks {
		if t.Outcome == Failed {
			out = append(out, PartialFailure{Key: t.Key, Err: t.Err})
		}
	}
	return out
}

// Coordinator fans lookups out to the Directory and fans results back in on
// the Dispatcher.
type Coordinator struct {
	Directory   ports.Directory
	Dispatcher  ports.Dispatcher
	Concurrency int
	Logger      *slog.Logger
}

// Run starts the lookups for tasks and returns immediately. Results are
// recorded on the dispatcher and complete is invoked there exactly once with
// the settled report. With no tasks complete runs synchronously, so Run must
// itself be called from the dispatcher.
func (c *Coordinator) Run(ctx context.Context, tasks []Task, complete func(Report)) {
	settled := make([]Task, len(tasks))
	copy(settled, tasks)
	barrier := NewBarrier(len(settled), func() {
		c.logFailures(settled)
		complete(Report{Tasks: settled})
	})
	if len(settled) == 0 {
		return
	}

	go func() {
		var g errgroup.Group
		g.SetLimit(c.concurrency())
		for i := range settled {
			key := settled[i].Key
			g.Go(func() error {
				profile, err := c.Directory.GetProfile(ctx, key)
				c.Dispatcher.Dispatch(func() {
					if err != nil || profile.DisplayName == "" {
						settled[i].Outcome = Failed
						settled[i].Err = err
						if err == nil {
							settled[i].Err = errEmptyName
						}
					} else {
						settled[i].Outcome = Resolved
						settled[i].Name = profile.DisplayName
					}
					barrier.Done()
				})
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (c *Coordinator) concurrency() int {
	if c.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Concurrency
}

func (c *Coordinator) logFailures(tasks []Task) {
	if c.Logger == nil {
		return
	}
	for _, t := range tasks {
		if t.Outcome == Failed {
			c.Logger.Debug("enrich lookup failed", "user_id", t.Key.String(), "error", t.Err)
		}
	}
}

var errEmptyName = errors.New("enrich: empty display name")

// Plan snapshots items by index and returns one task per distinct key that
// still needs a name.
func Plan[T any](items []T, needs func(T) bool, key func(T) wire.Identifier) []Task {
	var tasks []Task
	seen := make(map[wire.Identifier]struct{})
	for i, item := range items {
		if !needs(item) {
			continue
		}
		k := key(item)
		if k.IsZero() {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		tasks = append(tasks, Task{Index: i, Key: k})
	}
	return tasks
}

// Apply writes resolved names into items by key, so entries inserted or
// reordered since the snapshot keep their position. Unresolved items are left
// as they are.
func Apply[T any](items []T, report Report, key func(T) wire.Identifier, set func(T, string) T) []T {
	names := report.Names()
	out := make([]T, len(items))
	for i, item := range items {
		if name, ok := names[key(item)]; ok {
			item = set(item, name)
		}
		out[i] = item
	}
	return out
}
