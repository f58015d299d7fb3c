package style

import "github.com/matzehuels/stylegraph/pkg/errors"

// Handle is a generation-checked reference to a style. Unlike a raw ID, a
// handle detects that the style it was taken from has been removed, even if
// a new style was later added under the same id.
type Handle struct {
	ID  ID
	Gen uint32
}

// Handle returns a handle for the style with the given id.
// Returns NOT_FOUND if the style does not exist.
func (m *Manager) Handle(id ID) (Handle, error) {
	if _, ok := m.index[id]; !ok {
		return Handle{}, errors.New(errors.ErrCodeNotFound, "style %d not found", id)
	}
	return Handle{ID: id, Gen: m.generations[id]}, nil
}

// Lookup returns the style referenced by h.
// Returns STALE_HANDLE if the style has been removed since the handle was
// taken, or NOT_FOUND if no style with that id ever existed.
func (m *Manager) Lookup(h Handle) (*Style, error) {
	gen := m.generations[h.ID]
	s, ok := m.index[h.ID]
	switch {
	case ok && gen == h.Gen:
		return s, nil
	case h.Gen < gen:
		return nil, errors.New(errors.ErrCodeStaleHandle, "handle to style %d is stale (generation %d, current %d)", h.ID, h.Gen, gen)
	}
	return nil, errors.New(errors.ErrCodeNotFound, "style %d not found", h.ID)
}
