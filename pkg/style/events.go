package style

import (
	"fmt"
	"slices"

	"github.com/matzehuels/stylegraph/pkg/topology"
)

// EventType classifies a ChangeEvent.
type EventType uint8

const (
	EventStyleAdded EventType = iota + 1
	EventStyleRemoved
	EventStyleUpdated
	EventDefaultSet
	EventDefaultCleared
	EventAttached
	EventDetached
)

var eventTypeNames = map[EventType]string{
	EventStyleAdded:     "style_added",
	EventStyleRemoved:   "style_removed",
	EventStyleUpdated:   "style_updated",
	EventDefaultSet:     "default_set",
	EventDefaultCleared: "default_cleared",
	EventAttached:       "attached",
	EventDetached:       "detached",
}

func (t EventType) String() string {
	if s, ok := eventTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ChangeEvent describes one mutation of a Manager.
//
// Which fields are meaningful depends on Type:
//   - style_added, style_removed, style_updated: StyleID
//   - default_set, default_cleared: StyleID, Kind, MetaTarget
//   - attached, detached: StyleID, Kind, EntityID
type ChangeEvent struct {
	Type       EventType   `json:"type"`
	StyleID    ID          `json:"style_id"`
	Kind       Kind        `json:"kind"`
	EntityID   topology.ID `json:"entity_id,omitempty"`
	MetaTarget string      `json:"meta_target,omitempty"`
}

// Listener receives change events. Listeners run synchronously on the
// goroutine that performed the mutation and must not mutate the Manager.
type Listener func(ChangeEvent)

type subscription struct {
	fn Listener
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (m *Manager) Subscribe(l Listener) (cancel func()) {
	sub := &subscription{fn: l}
	m.subs = append(m.subs, sub)
	return func() {
		for i, s := range m.subs {
			if s == sub {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

func (m *Manager) emit(ev ChangeEvent) {
	for _, s := range slices.Clone(m.subs) {
		s.fn(ev)
	}
}
