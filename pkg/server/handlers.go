package server

import (
	"bytes"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stylegraph/pkg/buildinfo"
	"github.com/matzehuels/stylegraph/pkg/errors"
	gio "github.com/matzehuels/stylegraph/pkg/io"
	"github.com/matzehuels/stylegraph/pkg/style"
)

const maxGraphBody = 64 << 20

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	format := gio.FormatBinary
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := gio.ParseFormat(q)
		if err != nil {
			writeError(w, err)
			return
		}
		format = f
	}

	s.mu.Lock()
	data, err := gio.Marshal(r.Context(), s.g, format)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(data)
}

func (s *Server) putGraph(w http.ResponseWriter, r *http.Request) {
	format := gio.FormatBinary
	if mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mt == "application/json" {
		format = gio.FormatJSON
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxGraphBody))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	g, err := gio.Read(r.Context(), bytes.NewReader(data), format)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	s.setGraph(g)
	s.persist(r.Context())
	stats := g.Stats()
	s.mu.Unlock()

	s.hub.broadcast(graphReplaced)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.g.Stats()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func getVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) listStyles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := []styleView{}
	for _, st := range s.g.Styles().Styles() {
		views = append(views, newStyleView(st))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) addStyle(w http.ResponseWriter, r *http.Request) {
	var in styleView
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	props, err := in.properties()
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := in.ID
	if id == style.NoStyle {
		id = s.g.Styles().NextID()
	}
	st := &style.Style{ID: id, MetaTarget: in.MetaTarget, Name: in.Name, Target: in.Target, Properties: props}
	if err := s.g.Styles().AddStyle(st); err != nil {
		writeError(w, err)
		return
	}
	s.persist(r.Context())
	writeJSON(w, http.StatusCreated, newStyleView(st))
}

func (s *Server) getStyle(w http.ResponseWriter, r *http.Request) {
	id, err := styleIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.g.Styles().Style(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "style %d not found", id))
		return
	}
	writeJSON(w, http.StatusOK, newStyleView(st))
}

func (s *Server) updateStyle(w http.ResponseWriter, r *http.Request) {
	id, err := styleIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var patch stylePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.g.Styles().UpdateStyle(id, patch.apply)
	if err != nil {
		writeError(w, err)
		return
	}
	s.persist(r.Context())
	st, _ := s.g.Styles().Style(id)
	writeJSON(w, http.StatusOK, newStyleView(st))
}

func (s *Server) removeStyle(w http.ResponseWriter, r *http.Request) {
	id, err := styleIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.g.RemoveStyle(id); err != nil {
		writeError(w, err)
		return
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type defaultsView struct {
	Node map[string]style.ID `json:"node"`
	Edge map[string]style.ID `json:"edge"`
}

func (s *Server) getDefaults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, defaultsView{
		Node: s.g.Styles().Defaults(style.KindNode),
		Edge: s.g.Styles().Defaults(style.KindEdge),
	})
}

type setDefaultRequest struct {
	Style style.ID `json:"style"`
}

func (s *Server) setDefault(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in setDefaultRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, err)
		return
	}
	meta := chi.URLParam(r, "metaTarget")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.g.Styles().SetDefaultStyle(meta, in.Style, kind); err != nil {
		writeError(w, err)
		return
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearDefault(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g.Styles().ClearDefaultStyle(chi.URLParam(r, "metaTarget"), kind)
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) attach(w http.ResponseWriter, r *http.Request) {
	id, err := styleIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	kind, entityID, err := entityParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.g.SetStyle(kind, entityID, id); err != nil {
		writeError(w, err)
		return
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// detach clears the entity's explicit style when it is id, and otherwise
// only removes the entity from the style's id set. Detaching an entity that
// is not attached is a no-op.
func (s *Server) detach(w http.ResponseWriter, r *http.Request) {
	id, err := styleIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	kind, entityID, err := entityParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.g.Entity(kind, entityID); ok && e.AssignedStyle() == id {
		s.g.ClearStyle(kind, entityID)
	} else {
		s.g.Styles().Detach(id, entityID, kind)
	}
	s.persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type resolveView struct {
	Kind     style.Kind `json:"kind"`
	EntityID int32      `json:"entity_id"`
	StyleID  style.ID   `json:"style_id"`
	Explicit bool       `json:"explicit"`
	Style    *styleView `json:"style"`
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	kind, entityID, err := entityParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.g.Entity(kind, entityID)
	if !ok {
		writeError(w, notFoundEntity(kind, entityID))
		return
	}
	out := resolveView{Kind: kind, EntityID: int32(entityID)}
	out.StyleID = s.g.Styles().Resolve(e, kind)
	out.Explicit = out.StyleID != style.NoStyle && out.StyleID == e.AssignedStyle()
	if st := s.g.Resolve(kind, entityID); st != nil {
		v := newStyleView(st)
		out.Style = &v
	}
	writeJSON(w, http.StatusOK, out)
}
