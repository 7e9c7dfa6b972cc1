package echoapi

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/madrasahub/core/resource"
)

const (
	contextSessionKey = "session"
	sessionTTL        = 12 * time.Hour
)

type (
	// entry serializes the requests of one session.
	entry[T any] struct {
		mu    sync.Mutex
		value T
		seen  time.Time
	}

	editorEntry = entry[*resource.EditorSession]
	viewerEntry = entry[*resource.Viewer]

	// registry keeps the open editor and viewer sessions by id.
	registry struct {
		mu      sync.Mutex
		ttl     time.Duration
		now     func() time.Time
		editors map[string]*editorEntry
		viewers map[string]*viewerEntry
	}
)

func newRegistry(ttl time.Duration) *registry {
	return &registry{
		ttl:     ttl,
		now:     time.Now,
		editors: make(map[string]*editorEntry),
		viewers: make(map[string]*viewerEntry),
	}
}

func (r *registry) addEditor(sess *resource.EditorSession) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	id := uuid.NewString()
	r.editors[id] = &editorEntry{value: sess, seen: r.now()}
	return id
}

func (r *registry) editor(id string) (*editorEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.editors[id]
	if ok {
		e.seen = r.now()
	}
	return e, ok
}

func (r *registry) addViewer(v *resource.Viewer) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prune()
	id := uuid.NewString()
	r.viewers[id] = &viewerEntry{value: v, seen: r.now()}
	return id
}

func (r *registry) viewer(id string) (*viewerEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.viewers[id]
	if ok {
		v.seen = r.now()
	}
	return v, ok
}

func (r *registry) removeViewer(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.viewers, id)
}

// prune drops sessions idle for longer than ttl. r.mu must be held.
func (r *registry) prune() {
	deadline := r.now().Add(-r.ttl)
	for id, e := range r.editors {
		if e.seen.Before(deadline) {
			delete(r.editors, id)
		}
	}
	for id, v := range r.viewers {
		if v.seen.Before(deadline) {
			delete(r.viewers, id)
		}
	}
}
