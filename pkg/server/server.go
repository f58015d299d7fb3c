// Package server exposes a styled graph over HTTP.
//
// The server owns a single [graph.Graph] guarded by a mutex. Every handler
// takes the lock for the duration of its work, so encoded snapshots are
// always consistent. Style changes are streamed to websocket clients on
// /events as JSON change events.
//
// # Routes
//
//	GET    /graph                              encoded graph (binary, or JSON with ?format=json)
//	PUT    /graph                              replace the graph (body codec from Content-Type)
//	GET    /stats                              summary counts
//	GET    /version                            build information
//	GET    /styles                             list styles
//	POST   /styles                             add a style
//	GET    /styles/{id}                        one style
//	PATCH  /styles/{id}                        update the fields present; properties merge, "unset" removes
//	DELETE /styles/{id}                        remove a style
//	GET    /defaults                           default tables
//	PUT    /defaults/{kind}/{metaTarget}       set a default ({"style": id})
//	DELETE /defaults/{kind}/{metaTarget}       clear a default
//	POST   /styles/{id}/{kind}/{entityID}      assign a style to a node or edge
//	DELETE /styles/{id}/{kind}/{entityID}      detach a node or edge from a style
//	GET    /resolve/{kind}/{entityID}          effective style of a node or edge
//	GET    /events                             websocket change stream
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stylegraph/pkg/graph"
	"github.com/matzehuels/stylegraph/pkg/observability"
	"github.com/matzehuels/stylegraph/pkg/store"
	"github.com/matzehuels/stylegraph/pkg/style"
)

// Server serves one graph.
type Server struct {
	mu          sync.Mutex
	g           *graph.Graph
	unsubscribe func()

	logger   *log.Logger
	store    store.Store
	snapshot string

	hub    *hub
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStore saves the graph to st under name after every successful change.
func WithStore(st store.Store, name string) Option {
	return func(s *Server) {
		s.store = st
		s.snapshot = name
	}
}

// New creates a server for g.
func New(g *graph.Graph, opts ...Option) *Server {
	s := &Server{
		logger: log.New(io.Discard),
		hub:    newHub(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setGraph(g)
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Graph runs fn with exclusive access to the served graph.
func (s *Server) Graph(fn func(g *graph.Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.g)
}

// setGraph swaps the served graph and moves the event subscription to its
// style manager. Callers hold s.mu, except New.
func (s *Server) setGraph(g *graph.Graph) {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.g = g
	s.unsubscribe = g.Styles().Subscribe(func(ev style.ChangeEvent) {
		s.hub.publish(ev)
	})
}

// persist saves the graph when a store is configured. Callers hold s.mu.
func (s *Server) persist(ctx context.Context) {
	if s.store == nil {
		return
	}
	snap, err := store.Save(ctx, s.store, s.snapshot, s.g)
	if err != nil {
		s.logger.Error("save snapshot", "name", s.snapshot, "err", err)
		return
	}
	s.logger.Debug("saved snapshot", "name", snap.Name, "size", snap.Size)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/graph", s.getGraph)
	r.Put("/graph", s.putGraph)
	r.Get("/stats", s.getStats)
	r.Get("/version", getVersion)

	r.Route("/styles", func(r chi.Router) {
		r.Get("/", s.listStyles)
		r.Post("/", s.addStyle)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getStyle)
			r.Patch("/", s.updateStyle)
			r.Delete("/", s.removeStyle)
			r.Post("/{kind}/{entityID}", s.attach)
			r.Delete("/{kind}/{entityID}", s.detach)
		})
	})

	r.Get("/defaults", s.getDefaults)
	r.Put("/defaults/{kind}/{metaTarget}", s.setDefault)
	r.Delete("/defaults/{kind}/{metaTarget}", s.clearDefault)

	r.Get("/resolve/{kind}/{entityID}", s.resolve)
	r.Get("/events", s.hub.serveWS(s.logger))
	return r
}

// instrument reports requests to the HTTP hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and disconnects websocket clients.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		s.hub.close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects websocket clients and stops event forwarding.
func (s *Server) Close() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Unlock()
	s.hub.close()
}
