package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/stylegraph/pkg/buildinfo"
	"github.com/matzehuels/stylegraph/pkg/errors"
	"github.com/matzehuels/stylegraph/pkg/graph"
	gio "github.com/matzehuels/stylegraph/pkg/io"
	"github.com/matzehuels/stylegraph/pkg/store"
	"github.com/matzehuels/stylegraph/pkg/style"
	"github.com/matzehuels/stylegraph/pkg/topology"
)

func newTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("build test graph: %v", err)
		}
	}
	var props style.Properties
	must(props.Set("fill", style.ColorValue(style.RGBA(0xee, 0xee, 0xee, 0xff))))
	must(g.Styles().AddStyle(&style.Style{ID: 1, MetaTarget: "Task", Name: "Default Task", Properties: props}))
	must(g.Styles().AddStyle(&style.Style{ID: 2, MetaTarget: "Task", Name: "Highlighted"}))
	must(g.Styles().SetDefaultStyle("Task", 1, style.KindNode))
	must(g.AddNode(topology.Node{ID: 1, MetaTarget: "Task"}, style.NoStyle))
	must(g.AddNode(topology.Node{ID: 2, MetaTarget: "Task"}, 2))
	must(g.AddEdge(topology.Edge{ID: 10, From: 1, To: 2}, style.NoStyle))
	return g
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// expectStatus fails the test immediately when rec has the wrong status.
func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestStyles(t *testing.T) {
	s := New(newTestGraph(t))
	defer s.Close()
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/styles", "")
	expectStatus(t, rec, http.StatusOK)
	var list []styleView
	decodeResponse(t, rec, &list)
	if len(list) != 2 {
		t.Fatalf("GET /styles = %d styles, want 2", len(list))
	}
	if list[0].ID != 1 {
		t.Errorf("first style id = %d, want 1", list[0].ID)
	}
	if len(list[0].Properties) != 1 {
		t.Fatalf("style 1 properties = %+v, want one", list[0].Properties)
	}
	if p := list[0].Properties[0]; p.Value != "#eeeeee" || p.Type != "color" {
		t.Errorf("style 1 fill = %v (%s), want #eeeeee (color)", p.Value, p.Type)
	}

	rec = do(t, h, http.MethodPost, "/styles",
		`{"meta_target":"Dep","name":"Dependency","properties":[{"name":"line.width","value":2},{"name":"line.color","value":"#336699"},{"name":"opacity","type":"float","value":1}]}`)
	expectStatus(t, rec, http.StatusCreated)
	var added styleView
	decodeResponse(t, rec, &added)
	if added.ID != 3 {
		t.Errorf("added id = %d, want 3", added.ID)
	}

	s.Graph(func(g *graph.Graph) {
		st, ok := g.Styles().Style(3)
		if !ok {
			t.Error("style 3 missing")
			return
		}
		for name, want := range map[string]style.ValueType{
			"line.width": style.TypeInt,
			"line.color": style.TypeColor,
			"opacity":    style.TypeFloat,
		} {
			if v, _ := st.Properties.Get(name); v.Type() != want {
				t.Errorf("%s type = %v, want %v", name, v.Type(), want)
			}
		}
	})

	if rec = do(t, h, http.MethodPost, "/styles", `{"id":1}`); rec.Code != http.StatusConflict {
		t.Errorf("POST duplicate id status = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodPatch, "/styles/3", `{"meta_target":"Dep","name":"Dep"}`)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"name": "Dep"`) {
		t.Errorf("PATCH body = %s, want renamed style", rec.Body.String())
	}

	if rec = do(t, h, http.MethodGet, "/styles/42", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /styles/42 status = %d, want 404", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, "/styles/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("GET /styles/abc status = %d, want 400", rec.Code)
	}

	rec = do(t, h, http.MethodDelete, "/styles/1", "")
	expectStatus(t, rec, http.StatusConflict)
	var ev errorView
	decodeResponse(t, rec, &ev)
	if ev.Code != errors.ErrCodeInUseAsDefault || ev.Category != "repository" {
		t.Errorf("DELETE default style error = %+v, want IN_USE_AS_DEFAULT/repository", ev)
	}

	rec = do(t, h, http.MethodDelete, "/styles/2", "")
	expectStatus(t, rec, http.StatusNoContent)
	s.Graph(func(g *graph.Graph) {
		if n, _ := g.Node(2); n.StyleID != style.NoStyle {
			t.Errorf("node 2 style = %d after removal, want none", n.StyleID)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() error: %v", err)
		}
	})
}

func TestPatchStyleKeepsAbsentFields(t *testing.T) {
	g := newTestGraph(t)
	err := g.Styles().UpdateStyle(1, func(st *style.Style) error {
		st.Target = "canvas"
		return st.Properties.Set("shape", style.StringValue("box"))
	})
	if err != nil {
		t.Fatalf("UpdateStyle() error: %v", err)
	}
	h := New(g).Handler()

	rec := do(t, h, http.MethodPatch, "/styles/1", `{"name":"Renamed"}`)
	expectStatus(t, rec, http.StatusOK)

	st, _ := g.Styles().Style(1)
	if st.Name != "Renamed" || st.MetaTarget != "Task" || st.Target != "canvas" {
		t.Errorf("after name patch = {%q %q %q}, want {Renamed Task canvas}", st.Name, st.MetaTarget, st.Target)
	}
	if keys := st.Properties.Keys(); !slices.Equal(keys, []string{"fill", "shape"}) {
		t.Errorf("properties = %v, want [fill shape]", keys)
	}

	rec = do(t, h, http.MethodPatch, "/styles/1", `{"properties":[{"name":"shape","value":"ellipse"},{"name":"width","value":2}],"unset":["fill"]}`)
	expectStatus(t, rec, http.StatusOK)
	if keys := st.Properties.Keys(); !slices.Equal(keys, []string{"shape", "width"}) {
		t.Errorf("properties = %v, want [shape width]", keys)
	}
	if v, _ := st.Properties.Get("shape"); v.String() != "ellipse" {
		t.Errorf("shape = %s, want ellipse", v)
	}

	rec = do(t, h, http.MethodPatch, "/styles/1", `{"name":"Broken","properties":[{"name":"bad name","value":1}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid patch status = %d, want 400", rec.Code)
	}
	if st.Name != "Renamed" {
		t.Errorf("name = %q, failed patch must not apply partially", st.Name)
	}

	if rec = do(t, h, http.MethodPatch, "/styles/1", `{"id":2}`); rec.Code != http.StatusBadRequest {
		t.Errorf("id change status = %d, want 400", rec.Code)
	}
}

func TestDefaultsAndResolve(t *testing.T) {
	s := New(newTestGraph(t))
	defer s.Close()
	h := s.Handler()

	resolve := func(path string) resolveView {
		t.Helper()
		rec := do(t, h, http.MethodGet, path, "")
		expectStatus(t, rec, http.StatusOK)
		var res resolveView
		decodeResponse(t, rec, &res)
		return res
	}

	if res := resolve("/resolve/node/1"); res.StyleID != 1 || res.Explicit {
		t.Errorf("node 1 = %+v, want default style 1", res)
	}
	if res := resolve("/resolve/node/2"); res.StyleID != 2 || !res.Explicit {
		t.Errorf("node 2 = %+v, want explicit style 2", res)
	}
	if res := resolve("/resolve/edge/10"); res.StyleID != style.NoStyle || res.Style != nil {
		t.Errorf("edge 10 = %+v, want no style", res)
	}

	if rec := do(t, h, http.MethodGet, "/resolve/edge/99", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing edge status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/resolve/group/1", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want 400", rec.Code)
	}

	expectStatus(t, do(t, h, http.MethodPut, "/defaults/edge/Dep", `{"style":2}`), http.StatusNoContent)
	if rec := do(t, h, http.MethodPut, "/defaults/edge/Dep", `{"style":77}`); rec.Code != http.StatusNotFound {
		t.Errorf("missing default style status = %d, want 404", rec.Code)
	}

	var defs defaultsView
	decodeResponse(t, do(t, h, http.MethodGet, "/defaults", ""), &defs)
	if !maps.Equal(defs.Node, map[string]style.ID{"Task": 1}) {
		t.Errorf("node defaults = %v, want Task:1", defs.Node)
	}
	if !maps.Equal(defs.Edge, map[string]style.ID{"Dep": 2}) {
		t.Errorf("edge defaults = %v, want Dep:2", defs.Edge)
	}

	expectStatus(t, do(t, h, http.MethodDelete, "/defaults/node/Task", ""), http.StatusNoContent)
	// clearing twice is a no-op
	expectStatus(t, do(t, h, http.MethodDelete, "/defaults/node/Task", ""), http.StatusNoContent)

	if res := resolve("/resolve/node/1"); res.StyleID != style.NoStyle {
		t.Errorf("node 1 after clear = %+v, want no style", res)
	}
}

func TestAttachDetach(t *testing.T) {
	s := New(newTestGraph(t))
	defer s.Close()
	h := s.Handler()

	expectStatus(t, do(t, h, http.MethodPost, "/styles/1/edge/10", ""), http.StatusNoContent)
	s.Graph(func(g *graph.Graph) {
		if e, _ := g.Edge(10); e.StyleID != 1 {
			t.Errorf("edge 10 style = %d, want 1", e.StyleID)
		}
		if st, _ := g.Styles().Style(1); !st.EdgeIDs.Contains(10) {
			t.Error("style 1 does not list edge 10")
		}
	})

	if rec := do(t, h, http.MethodPost, "/styles/9/edge/10", ""); rec.Code != http.StatusNotFound {
		t.Errorf("attach missing style status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/styles/1/node/50", ""); rec.Code != http.StatusNotFound {
		t.Errorf("attach to missing node status = %d, want 404", rec.Code)
	}

	expectStatus(t, do(t, h, http.MethodDelete, "/styles/1/edge/10", ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodDelete, "/styles/1/edge/10", ""), http.StatusNoContent)
	s.Graph(func(g *graph.Graph) {
		if e, _ := g.Edge(10); e.StyleID != style.NoStyle {
			t.Errorf("edge 10 style = %d after detach, want none", e.StyleID)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate() error: %v", err)
		}
	})
}

func TestGraphRoundTrip(t *testing.T) {
	s := New(newTestGraph(t))
	defer s.Close()
	h := s.Handler()

	rec := do(t, h, http.MethodGet, "/graph", "")
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/x-protobuf" {
		t.Errorf("Content-Type = %q, want application/x-protobuf", ct)
	}
	bin := rec.Body.Bytes()

	rec = do(t, h, http.MethodGet, "/graph?format=json", "")
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	if rec = do(t, h, http.MethodGet, "/graph?format=xml", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("format=xml status = %d, want 400", rec.Code)
	}

	empty, err := gio.Marshal(context.Background(), graph.New(), gio.FormatBinary)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	req := httptest.NewRequest(http.MethodPut, "/graph", bytes.NewReader(empty))
	req.Header.Set("Content-Type", "application/x-protobuf")
	put := httptest.NewRecorder()
	h.ServeHTTP(put, req)
	expectStatus(t, put, http.StatusOK)

	var stats graph.Stats
	decodeResponse(t, do(t, h, http.MethodGet, "/stats", ""), &stats)
	if stats.Styles != 0 {
		t.Errorf("styles after replace = %d, want 0", stats.Styles)
	}

	req = httptest.NewRequest(http.MethodPut, "/graph", bytes.NewReader(bin))
	put = httptest.NewRecorder()
	h.ServeHTTP(put, req)
	expectStatus(t, put, http.StatusOK)
	if rec = do(t, h, http.MethodGet, "/graph", ""); !bytes.Equal(rec.Body.Bytes(), bin) {
		t.Error("re-encoding must be byte-identical")
	}

	req = httptest.NewRequest(http.MethodPut, "/graph", strings.NewReader("\xff\xff"))
	put = httptest.NewRecorder()
	h.ServeHTTP(put, req)
	if put.Code != http.StatusUnprocessableEntity {
		t.Errorf("corrupt graph status = %d, want 422", put.Code)
	}
}

func TestPersist(t *testing.T) {
	st := store.NewMemoryStore()
	s := New(newTestGraph(t), WithStore(st, "live"))
	defer s.Close()

	expectStatus(t, do(t, s.Handler(), http.MethodPost, "/styles", `{"name":"Extra"}`), http.StatusCreated)

	g, snap, err := store.Load(context.Background(), st, "live")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if snap.Name != "live" || g.Styles().Count() != 3 {
		t.Errorf("persisted snapshot %q has %d styles, want live with 3", snap.Name, g.Styles().Count())
	}
}

func TestEvents(t *testing.T) {
	s := New(newTestGraph(t))
	defer s.Close()
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	deadline := time.Now().Add(time.Second)
	for s.hub.count() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	res, err := http.Post(ts.URL+"/styles", "application/json", strings.NewReader(`{"id":5}`))
	if err != nil {
		t.Fatalf("POST /styles: %v", err)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("POST /styles status = %d, want 201", res.StatusCode)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var ev struct {
		Type    string   `json:"type"`
		StyleID style.ID `json:"style_id"`
	}
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	if ev.Type != "style_added" || ev.StyleID != 5 {
		t.Errorf("event = %+v, want style_added for style 5", ev)
	}
}

func TestVersion(t *testing.T) {
	rec := do(t, New(graph.New()).Handler(), http.MethodGet, "/version", "")
	expectStatus(t, rec, http.StatusOK)

	var info buildinfo.Info
	decodeResponse(t, rec, &info)
	if info.Version != buildinfo.Version {
		t.Errorf("version = %q, want %q", info.Version, buildinfo.Version)
	}
}

func TestStatusFor(t *testing.T) {
	if got := statusFor(io.EOF); got != http.StatusInternalServerError {
		t.Errorf("statusFor(EOF) = %d, want 500", got)
	}
	if got := statusFor(errors.New(errors.ErrCodeStaleHandle, "stale")); got != http.StatusGone {
		t.Errorf("statusFor(STALE_HANDLE) = %d, want 410", got)
	}
}
