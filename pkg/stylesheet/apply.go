package stylesheet

import (
	"maps"
	"slices"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
)

// ApplyResult summarizes what Apply changed.
type ApplyResult struct {
	Added    []style.ID
	Updated  []style.ID
	Defaults int // default entries set
}

// Changed reports whether Apply modified the manager.
func (r ApplyResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Updated) > 0 || r.Defaults > 0
}

// Apply merges the stylesheet into m.
//
// Styles whose id already exists are updated in place, keeping their entity
// sets; other styles are added, with zero ids allocated from m.NextID. Then
// each default entry is set. Every reference is checked before anything is
// changed, so a failing Apply leaves m untouched.
func Apply(m *style.Manager, s *Sheet) (ApplyResult, error) {
	var res ApplyResult
	if err := s.Validate(); err != nil {
		return res, err
	}

	declared := make(map[style.ID]bool)
	for _, def := range s.Styles {
		declared[def.ID] = true
	}
	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		for _, meta := range slices.Sorted(maps.Keys(s.Defaults.For(kind))) {
			id := s.Defaults.For(kind)[meta]
			if id == style.NoStyle || (!declared[id] && !m.Has(id)) {
				return res, errors.New(errors.ErrCodeNotFound,
					"default %s style for %q references unknown style %d", kind, meta, id)
			}
		}
	}

	next := m.NextID()
	props := make([]style.Properties, len(s.Styles))
	for i, def := range s.Styles {
		if def.ID != style.NoStyle && def.ID >= next {
			next = def.ID + 1
		}
		var err error
		if props[i], err = def.properties(); err != nil {
			return res, err
		}
	}

	for i, def := range s.Styles {
		if def.ID != style.NoStyle && m.Has(def.ID) {
			err := m.UpdateStyle(def.ID, func(st *style.Style) error {
				st.MetaTarget = def.MetaTarget
				st.Name = def.Name
				st.Target = def.Target
				st.Properties = props[i]
				return nil
			})
			if err != nil {
				return res, err
			}
			res.Updated = append(res.Updated, def.ID)
			continue
		}

		id := def.ID
		if id == style.NoStyle {
			id = next
			next++
		}
		st := &style.Style{ID: id, MetaTarget: def.MetaTarget, Name: def.Name, Target: def.Target, Properties: props[i]}
		if err := m.AddStyle(st); err != nil {
			return res, err
		}
		res.Added = append(res.Added, id)
	}

	for _, kind := range []style.Kind{style.KindNode, style.KindEdge} {
		table := s.Defaults.For(kind)
		for _, meta := range slices.Sorted(maps.Keys(table)) {
			if err := m.SetDefaultStyle(meta, table[meta], kind); err != nil {
				return res, err
			}
			res.Defaults++
		}
	}
	return res, nil
}

func (d StyleDef) properties() (style.Properties, error) {
	var props style.Properties
	for _, p := range d.Properties {
		if err := props.Set(p.Name, p.Value); err != nil {
			return props, err
		}
	}
	return props, nil
}
