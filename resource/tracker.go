package resource

import (
	"sync"

	"github.com/rs/zerolog"
)

// Kind labels what a tracked handle is.
type Kind string

const (
	KindBlobURL Kind = "blob-url"
)

type tracked struct {
	kind    Kind
	release func()
}

type Stats struct {
	TrackedResourceCount int
}

// Tracker is a registry of live revocable handles. Every tracked resource is
// released exactly once: on replacement, on explicit release, or on
// ReleaseAll at session teardown.
type Tracker struct {
	mux       sync.Mutex
	resources map[string]tracked
	logger    zerolog.Logger
}

func NewTracker(logger zerolog.Logger) *Tracker {
	return &Tracker{
		mux:       sync.Mutex{},
		resources: make(map[string]tracked),
		logger:    logger.With().Str("component", "resource_tracker").Logger(),
	}
}

// Track registers a handle under id. Re-tracking an id releases the previous
// handle first so replacement never leaks.
func (t *Tracker) Track(id string, kind Kind, release func()) {
	t.mux.Lock()
	prev, existed := t.resources[id]
	t.resources[id] = tracked{kind: kind, release: release}
	t.mux.Unlock()

	if existed {
		t.logger.Debug().Str("id", id).Str("kind", string(prev.kind)).Msg("Releasing replaced resource")
		prev.release()
	}
}

// Release revokes the handle registered under id. Unknown ids are a no-op.
func (t *Tracker) Release(id string) {
	t.mux.Lock()
	r, ok := t.resources[id]
	if ok {
		delete(t.resources, id)
	}
	t.mux.Unlock()

	if !ok {
		t.logger.Debug().Str("id", id).Msg("Release requested for untracked resource")
		return
	}
	t.logger.Debug().Str("id", id).Str("kind", string(r.kind)).Msg("Releasing resource")
	r.release()
}

// ReleaseAll revokes every still-tracked handle. Called on session teardown.
func (t *Tracker) ReleaseAll() {
	t.mux.Lock()
	resources := t.resources
	t.resources = make(map[string]tracked)
	t.mux.Unlock()

	for id, r := range resources {
		t.logger.Debug().Str("id", id).Str("kind", string(r.kind)).Msg("Releasing resource")
		r.release()
	}
}

func (t *Tracker) Stats() Stats {
	t.mux.Lock()
	defer t.mux.Unlock()
	return Stats{TrackedResourceCount: len(t.resources)}
}
