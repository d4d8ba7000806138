package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/marytreat/pkg/core"
)

func waitEvent(t *testing.T, ch <-chan core.Event, path string) core.Event {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case e, ok := <-ch:
			require.True(t, ok, "channel closed before %s", path)
			if e.Path == path {
				return e
			}
		case <-timeout:
			t.Fatalf("no event for %s", path)
		}
	}
}

func TestRepository_Watch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "media"), 0755))
	repo := newTestRepo(t, Config{Path: dir})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := repo.Watch(ctx, "**/*.dita")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.dita"), []byte("<concept/>"), 0644))

	e := waitEvent(t, events, "a.dita")
	assert.Equal(t, core.EventCreate, e.Type)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "media", "b.dita"), []byte("<concept/>"), 0644))
	waitEvent(t, events, "media/b.dita")

	require.NoError(t, os.Remove(filepath.Join(dir, "a.dita")))
	e = waitEvent(t, events, "a.dita")
	assert.Equal(t, core.EventDelete, e.Type)

	cancel()
	select {
	case _, ok := <-events:
		for ok {
			_, ok = <-events
		}
	case <-time.After(6 * time.Second):
		t.Fatal("events channel not closed after cancel")
	}
}

func TestRepository_WatchInvalidPattern(t *testing.T) {
	repo := newTestRepo(t, Config{})
	_, err := repo.Watch(context.Background(), "[")
	assert.Error(t, err)
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := newDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var got []core.Event
	fire := func(e core.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
	}

	d.add(core.Event{Type: core.EventCreate, Path: "a.dita"}, fire)
	d.add(core.Event{Type: core.EventModify, Path: "a.dita"}, fire)
	d.add(core.Event{Type: core.EventModify, Path: "b.dita"}, fire)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	d.stopAndWait(time.Second)

	mu.Lock()
	defer mu.Unlock()
	types := map[string]core.EventType{}
	for _, e := range got {
		types[e.Path] = e.Type
	}
	assert.Equal(t, core.EventCreate, types["a.dita"], "create followed by writes stays a create")
	assert.Equal(t, core.EventModify, types["b.dita"])

	d.add(core.Event{Type: core.EventModify, Path: "c.dita"}, fire)
	time.Sleep(40 * time.Millisecond)
	assert.Len(t, got, 2, "stopped debouncer drops events")
}

func TestWatchWorker_SendAfterClose(t *testing.T) {
	w := &watchWorker{events: make(chan core.Event), done: make(chan struct{})}
	ctx := context.Background()

	blocked := make(chan struct{})
	go func() {
		defer close(blocked)
		w.send(ctx, core.Event{Type: core.EventModify, Path: "a.dita"})
	}()

	time.Sleep(20 * time.Millisecond)
	w.closeEvents()

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("pending send was not released")
	}
	assert.NotPanics(t, func() { w.send(ctx, core.Event{Type: core.EventModify, Path: "b.dita"}) })

	_, ok := <-w.events
	assert.False(t, ok)
}
