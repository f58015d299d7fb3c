package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

type styleView struct {
	ID         style.ID       `json:"id"`
	MetaTarget string         `json:"meta_target,omitempty"`
	Name       string         `json:"name,omitempty"`
	Target     string         `json:"target,omitempty"`
	Properties []propertyView `json:"properties"`
	Nodes      []topology.ID  `json:"nodes"`
	Edges      []topology.ID  `json:"edges"`
}

// propertyView is a property on the wire. On input Type is optional: JSON
// numbers become ints when integral, strings of the form "#rrggbb" colors.
type propertyView struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value any    `json:"value"`
}

func newStyleView(s *style.Style) styleView {
	v := styleView{
		ID:         s.ID,
		MetaTarget: s.MetaTarget,
		Name:       s.Name,
		Target:     s.Target,
		Properties: []propertyView{},
		Nodes:      s.NodeIDs.IDs(),
		Edges:      s.EdgeIDs.IDs(),
	}
	for name, val := range s.Properties.All() {
		raw := val.Interface()
		if c, ok := val.AsColor(); ok {
			raw = c.String()
		}
		v.Properties = append(v.Properties, propertyView{Name: name, Type: val.Type().String(), Value: raw})
	}
	if v.Nodes == nil {
		v.Nodes = []topology.ID{}
	}
	if v.Edges == nil {
		v.Edges = []topology.ID{}
	}
	return v
}

func (p propertyView) value() (style.Value, error) {
	raw := p.Value
	if n, ok := raw.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			raw = i
		} else if f, err := n.Float64(); err == nil {
			raw = f
		}
	}
	v, err := style.ValueOf(raw)
	if err != nil {
		return v, err
	}
	if p.Type == "" {
		return v, nil
	}
	want, err := style.ParseValueType(p.Type)
	if err != nil {
		return v, err
	}
	switch {
	case v.Type() == want:
		return v, nil
	case want == style.TypeFloat && v.Type() == style.TypeInt:
		f, _ := v.AsFloat()
		return style.FloatValue(f), nil
	case want == style.TypeString && v.Type() == style.TypeColor:
		c, _ := v.AsColor()
		return style.StringValue(c.String()), nil
	}
	return v, errors.New(errors.ErrCodeInvalidInput, "property %q: value %v is not a %s", p.Name, p.Value, want)
}

func (v styleView) properties() (style.Properties, error) {
	var props style.Properties
	for _, p := range v.Properties {
		val, err := p.value()
		if err != nil {
			return props, err
		}
		if err := props.Set(p.Name, val); err != nil {
			return props, err
		}
	}
	return props, nil
}

// stylePatch is the body of PATCH /styles/{id}. Absent fields are left
// alone; properties are merged into the bag and unset names removed.
type stylePatch struct {
	ID         *style.ID      `json:"id,omitempty"`
	MetaTarget *string        `json:"meta_target,omitempty"`
	Name       *string        `json:"name,omitempty"`
	Target     *string        `json:"target,omitempty"`
	Properties []propertyView `json:"properties,omitempty"`
	Unset      []string       `json:"unset,omitempty"`
}

func (p stylePatch) apply(st *style.Style) error {
	if p.ID != nil && *p.ID != st.ID {
		return errors.New(errors.ErrCodeInvalidInput, "style id cannot be changed by an update")
	}
	if p.MetaTarget != nil {
		st.MetaTarget = *p.MetaTarget
	}
	if p.Name != nil {
		st.Name = *p.Name
	}
	if p.Target != nil {
		st.Target = *p.Target
	}
	for _, name := range p.Unset {
		st.Properties.Delete(name)
	}
	for _, pv := range p.Properties {
		val, err := pv.value()
		if err != nil {
			return err
		}
		if err := st.Properties.Set(pv.Name, val); err != nil {
			return err
		}
	}
	return nil
}

type errorView struct {
	Error    string      `json:"error"`
	Code     errors.Code `json:"code,omitempty"`
	Category string      `json:"category,omitempty"`
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateID, errors.ErrCodeInUseAsDefault:
		return http.StatusConflict
	case errors.ErrCodeStaleHandle:
		return http.StatusGone
	case errors.ErrCodeCorruptGraph:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	view := errorView{Error: errors.UserMessage(err), Code: code}
	if code != "" {
		view.Category = code.Category()
	}
	writeJSON(w, statusFor(err), view)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func parseInt32(r *http.Request, param string) (int32, error) {
	raw := chi.URLParam(r, param)
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", param, raw)
	}
	return int32(n), nil
}

func styleIDParam(r *http.Request) (style.ID, error) {
	n, err := parseInt32(r, "id")
	return style.ID(n), err
}

func entityParams(r *http.Request) (style.Kind, topology.ID, error) {
	kind, err := style.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return kind, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid kind")
	}
	n, err := parseInt32(r, "entityID")
	return kind, topology.ID(n), err
}

func kindParam(r *http.Request) (style.Kind, error) {
	kind, err := style.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return kind, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid kind")
	}
	return kind, nil
}

func notFoundEntity(kind style.Kind, id topology.ID) error {
	return errors.New(errors.ErrCodeNotFound, "%s %d not found", kind, id)
}
