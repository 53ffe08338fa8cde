package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dekarrin/rtnparse/engine"
	"github.com/dekarrin/rtnparse/grammar"
)

// parseResponse is the JSON body returned by POST /parse.
type parseResponse struct {
	Status string `json:"status"`
	Tree   string `json:"tree,omitempty"`
	Error  string `json:"error,omitempty"`
}

// serve starts an HTTP server exposing g at POST /parse: the request
// body is parsed in full as one input and the resulting status (and,
// on success, the slot tree) is returned as JSON. Every request gets
// its own ParseState, since a ParseState is never safe to share
// across goroutines.
func serve(addr string, g *grammar.Grammar, maxStackDepth int) error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/parse", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, parseResponse{Error: err.Error()})
			return
		}

		s := engine.NewParseState()
		if maxStackDepth != 0 {
			s.MaxStackDepth = maxStackDepth
		}
		s.Init(g)

		status, _, err := engine.Parse(g, s, body, true)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, parseResponse{Status: status.String(), Error: err.Error()})
			return
		}

		resp := parseResponse{Status: status.String()}
		if status == engine.StatusEOF {
			resp.Tree = s.Result().DebugString()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	log.Printf("rtnparsedemo: listening on %s", addr)
	return http.ListenAndServe(addr, r)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("rtnparsedemo: failed to write response: %s", err.Error())
	}
}
