package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/marytreat/pkg/core"
)

func TestSource_ForwardsKeptEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	in := make(chan core.Event, 3)
	in <- core.Event{Type: core.EventCreate, Path: "a.dita"}
	in <- core.Event{Type: core.EventModify, Path: "media/a.png"}
	in <- core.Event{Type: core.EventDelete, Path: "b.dita"}
	close(in)

	src := NewSource(in, func(e core.Event) bool { return e.Type != core.EventModify })
	require.NoError(t, src.Start(ctx))

	var got []string
	for e := range src.Events() {
		got = append(got, e.String())
	}
	assert.Equal(t, []string{"CREATE a.dita", "DELETE b.dita"}, got)
}

func TestSource_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := NewSource(make(chan core.Event), nil)
	require.NoError(t, src.Start(ctx))
	cancel()

	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "events channel should be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("source did not stop")
	}
}
