// Package api exposes a running pipe over HTTP: health, statistics,
// latest result and expvar metrics.
package api

import (
	"github.com/gorilla/mux"

	"github.com/dudk/myo/pipe"
)

// NewRouter returns a router serving the observability surface of p.
func NewRouter(p *pipe.Pipe) *mux.Router {
	h := handler{pipe: p}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods("GET")
	r.HandleFunc("/stats", h.stats).Methods("GET")
	r.HandleFunc("/result/latest", h.latestResult).Methods("GET")
	r.HandleFunc("/metrics", h.metrics).Methods("GET")
	return r
}
