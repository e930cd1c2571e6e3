package paths

import "sync"

// EventType names a kind of path change.
type EventType string

const (
	EventPathUpdated EventType = "path_updated"
	EventPathDeleted EventType = "path_deleted"
)

// Event is emitted after a mutation has completed.
type Event struct {
	Type   EventType `json:"type"`
	PathID int64     `json:"path_id"`
}

type broadcaster struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan Event]struct{})}
}

func (b *broadcaster) subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// publish never blocks; slow subscribers miss events.
func (b *broadcaster) publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
