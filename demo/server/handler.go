package server

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"timeline.znkr.io/demo/model"
	"timeline.znkr.io/demo/source"
	"timeline.znkr.io/demo/store"
)

type handler struct {
	store *store.Store[source.Snapshot]
	cmds  chan<- Request
	page  *renderer

	done     chan struct{}
	doneOnce sync.Once
}

func newHandler(st *store.Store[source.Snapshot], cmds chan<- Request) *handler {
	return &handler{
		store: st,
		cmds:  cmds,
		page:  newRenderer(),
		done:  make(chan struct{}),
	}
}

// shutdown ends all event streams.
func (h *handler) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	switch req.URL.Path {
	case "/":
		h.servePage(w, req)
	case "/events":
		h.serveEvents(w, req)
	case "/tap", "/audio":
		h.serveCommand(w, req)
	default:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusNotFound)
		if req.Method == http.MethodGet {
			w.Write([]byte("not found"))
		}
	}
}

func (h *handler) servePage(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
	case http.MethodHead:
	default:
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if req.Method == http.MethodHead {
		return
	}

	b, err := h.page.render(h.store.Get())
	if err != nil {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(err.Error()))
		log.Printf("failed to serve %v: %v", req.URL.EscapedPath(), err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(b); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// serveEvents streams the sequence number of every new snapshot as server-sent events.
func (h *handler) serveEvents(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	sub := h.store.Subscribe()
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	for {
		select {
		case snap, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %d\n\n", snap.Seq); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				log.Printf("failed to flush event: %v", err)
				return
			}
		case <-req.Context().Done():
			return
		case <-h.done:
			return
		}
	}
}

func (h *handler) serveCommand(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	cmd, err := parseCommand(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	reply := make(chan error, 1)
	select {
	case h.cmds <- Request{Cmd: cmd, Reply: reply}:
	case <-req.Context().Done():
		return
	case <-h.done:
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	select {
	case err := <-reply:
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	case <-req.Context().Done():
		return
	}

	http.Redirect(w, req, "/", http.StatusSeeOther)
}

func parseCommand(req *http.Request) (source.Command, error) {
	if err := req.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form: %v", err)
	}

	switch req.URL.Path {
	case "/tap":
		sec, err := model.ParseSection(req.PostForm.Get("section"))
		if err != nil {
			return nil, err
		}
		i, err := strconv.Atoi(req.PostForm.Get("index"))
		if err != nil {
			return nil, fmt.Errorf("parsing index: %v", err)
		}
		return source.Tap{Section: sec, Index: i}, nil
	case "/audio":
		name := strings.TrimSpace(req.PostForm.Get("name"))
		if name == "" {
			return nil, fmt.Errorf("missing name")
		}
		return source.AddAudio{Name: name}, nil
	default:
		return nil, fmt.Errorf("unknown command %s", req.URL.Path)
	}
}
