package style

import (
	"maps"
	"slices"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

// Manager owns the canonical set of styles and the per-meta-target default
// style tables for nodes and edges.
//
// The zero value is not usable - use NewManager. Manager is not safe for
// concurrent use without external synchronization.
type Manager struct {
	styles      []*Style
	index       map[ID]*Style
	defaults    [2]map[string]ID // indexed by Kind
	generations map[ID]uint32
	subs        []*subscription
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		index:       make(map[ID]*Style),
		defaults:    [2]map[string]ID{make(map[string]ID), make(map[string]ID)},
		generations: make(map[ID]uint32),
	}
}

// AddStyle appends s to the repository.
// Returns DUPLICATE_ID if a style with the same id exists, or INVALID_INPUT
// if the id is not positive. The Manager takes ownership of s.
func (m *Manager) AddStyle(s *Style) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidInput, "style is nil")
	}
	if s.ID <= NoStyle {
		return errors.New(errors.ErrCodeInvalidInput, "style id must be positive, got %d", s.ID)
	}
	if _, exists := m.index[s.ID]; exists {
		return errors.New(errors.ErrCodeDuplicateID, "style %d already exists", s.ID)
	}
	m.styles = append(m.styles, s)
	m.index[s.ID] = s
	m.emit(ChangeEvent{Type: EventStyleAdded, StyleID: s.ID})
	return nil
}

// RemoveStyle removes the style with the given id and returns it.
//
// Returns NOT_FOUND if absent, or IN_USE_AS_DEFAULT if a node or edge default
// entry still points at it; in both cases the Manager is unchanged. Entity
// ids held by the removed style become orphaned: the caller must clear the
// matching explicit style references on its nodes and edges.
func (m *Manager) RemoveStyle(id ID) (*Style, error) {
	s, ok := m.index[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "style %d not found", id)
	}
	for _, kind := range []Kind{KindNode, KindEdge} {
		for _, meta := range slices.Sorted(maps.Keys(m.defaults[kind])) {
			if m.defaults[kind][meta] == id {
				return nil, errors.New(errors.ErrCodeInUseAsDefault,
					"style %d is the default %s style for %q", id, kind, meta)
			}
		}
	}
	m.styles = slices.DeleteFunc(m.styles, func(x *Style) bool { return x.ID == id })
	delete(m.index, id)
	m.generations[id]++
	m.emit(ChangeEvent{Type: EventStyleRemoved, StyleID: id})
	return s, nil
}

// UpdateStyle applies fn to a copy of the style with the given id. When fn
// succeeds the copy replaces the stored style and subscribers are notified;
// when it fails, or changes the id (INVALID_INPUT), the style is untouched
// and no event is emitted.
func (m *Manager) UpdateStyle(id ID, fn func(*Style) error) error {
	s, ok := m.index[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "style %d not found", id)
	}
	c := s.Clone()
	if err := fn(c); err != nil {
		return err
	}
	if c.ID != id {
		return errors.New(errors.ErrCodeInvalidInput, "style id cannot be changed by an update")
	}
	*s = *c
	m.emit(ChangeEvent{Type: EventStyleUpdated, StyleID: id})
	return nil
}

// Style returns the style with the given id.
func (m *Manager) Style(id ID) (*Style, bool) {
	s, ok := m.index[id]
	return s, ok
}

// Has reports whether a style with the given id exists.
func (m *Manager) Has(id ID) bool {
	_, ok := m.index[id]
	return ok
}

// Styles returns all styles in insertion order.
func (m *Manager) Styles() []*Style { return slices.Clone(m.styles) }

// Count returns the number of styles. It is always derived from the style
// collection and cannot drift.
func (m *Manager) Count() int { return len(m.styles) }

// NextID returns one more than the largest style id in use.
func (m *Manager) NextID() ID {
	var top ID
	for _, s := range m.styles {
		top = max(top, s.ID)
	}
	return top + 1
}

// SetDefaultStyle makes id the default style for entities of the given kind
// whose meta-target is metaTarget, overwriting any previous default.
// Returns NOT_FOUND if id is unknown.
func (m *Manager) SetDefaultStyle(metaTarget string, id ID, kind Kind) error {
	if err := kind.validate(); err != nil {
		return err
	}
	if err := errors.ValidateMetaTarget(metaTarget); err != nil {
		return err
	}
	if _, ok := m.index[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "style %d not found", id)
	}
	m.defaults[kind][metaTarget] = id
	m.emit(ChangeEvent{Type: EventDefaultSet, StyleID: id, Kind: kind, MetaTarget: metaTarget})
	return nil
}

// ClearDefaultStyle removes the default entry for metaTarget. Clearing an
// absent entry is a no-op.
func (m *Manager) ClearDefaultStyle(metaTarget string, kind Kind) {
	if !kind.Valid() {
		return
	}
	id, ok := m.defaults[kind][metaTarget]
	if !ok {
		return
	}
	delete(m.defaults[kind], metaTarget)
	m.emit(ChangeEvent{Type: EventDefaultCleared, StyleID: id, Kind: kind, MetaTarget: metaTarget})
}

// DefaultStyle returns the default style id for metaTarget.
func (m *Manager) DefaultStyle(metaTarget string, kind Kind) (ID, bool) {
	if !kind.Valid() {
		return NoStyle, false
	}
	id, ok := m.defaults[kind][metaTarget]
	return id, ok
}

// Defaults returns a copy of the default table for kind, or nil for an
// unknown kind.
func (m *Manager) Defaults(kind Kind) map[string]ID {
	if !kind.Valid() {
		return nil
	}
	return maps.Clone(m.defaults[kind])
}

// DefaultsFor returns the meta-targets whose default is id, sorted.
func (m *Manager) DefaultsFor(id ID, kind Kind) []string {
	if !kind.Valid() {
		return nil
	}
	var metas []string
	for meta, sid := range m.defaults[kind] {
		if sid == id {
			metas = append(metas, meta)
		}
	}
	slices.Sort(metas)
	return metas
}

// Resolve returns the effective style of e: its explicit style when set and
// present, otherwise the default for its meta-target, otherwise NoStyle.
func (m *Manager) Resolve(e Entity, kind Kind) ID {
	if id := e.AssignedStyle(); id != NoStyle {
		if _, ok := m.index[id]; ok {
			return id
		}
	}
	if id, ok := m.DefaultStyle(e.MetaTarget(), kind); ok {
		return id
	}
	return NoStyle
}

// ResolveStyle is like Resolve but returns the style itself, or nil for
// NoStyle.
func (m *Manager) ResolveStyle(e Entity, kind Kind) *Style {
	return m.index[m.Resolve(e, kind)]
}

// Attach records that entityID uses the style. Returns NOT_FOUND if the style
// does not exist. Attaching an id that is already present is a no-op.
func (m *Manager) Attach(id ID, entityID topology.ID, kind Kind) error {
	if err := kind.validate(); err != nil {
		return err
	}
	s, ok := m.index[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "style %d not found", id)
	}
	if s.Entities(kind).Add(entityID) {
		m.emit(ChangeEvent{Type: EventAttached, StyleID: id, Kind: kind, EntityID: entityID})
	}
	return nil
}

// Detach removes entityID from the style's entity set. Detaching an id that
// is not present, or from a style that does not exist, is a no-op.
func (m *Manager) Detach(id ID, entityID topology.ID, kind Kind) {
	s, ok := m.index[id]
	if !ok || !kind.Valid() {
		return
	}
	if s.Entities(kind).Remove(entityID) {
		m.emit(ChangeEvent{Type: EventDetached, StyleID: id, Kind: kind, EntityID: entityID})
	}
}

// DetachAll removes entityID from every style that lists it.
func (m *Manager) DetachAll(entityID topology.ID, kind Kind) {
	if !kind.Valid() {
		return
	}
	for _, s := range m.styles {
		if s.Entities(kind).Remove(entityID) {
			m.emit(ChangeEvent{Type: EventDetached, StyleID: s.ID, Kind: kind, EntityID: entityID})
		}
	}
}

// Validate checks that every default entry references an existing style.
func (m *Manager) Validate() error {
	for _, kind := range []Kind{KindNode, KindEdge} {
		for _, meta := range slices.Sorted(maps.Keys(m.defaults[kind])) {
			id := m.defaults[kind][meta]
			if _, ok := m.index[id]; !ok {
				return errors.New(errors.ErrCodeNotFound,
					"default %s style for %q references missing style %d", kind, meta, id)
			}
		}
	}
	return nil
}
