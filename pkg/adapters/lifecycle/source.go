// Package lifecycle exposes project change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/marytreat/pkg/core"
)

type projectSource struct {
	events <-chan core.Event
	keep   func(core.Event) bool
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source emitting the watch events for which
// keep returns true. A nil keep forwards every event.
func NewSource(events <-chan core.Event, keep func(core.Event) bool) lifecycle.Source {
	if keep == nil {
		keep = func(core.Event) bool { return true }
	}
	return &projectSource{
		events: events,
		keep:   keep,
		out:    make(chan lifecycle.Event),
	}
}

func (s *projectSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the watch channel closes,
// then closes Events.
func (s *projectSource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				if !s.keep(e) {
					continue
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
