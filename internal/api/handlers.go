package api

import (
	"encoding/json"
	"net/http"

	"github.com/dudk/myo"
	"github.com/dudk/myo/metric"
	"github.com/dudk/myo/pipe"
)

type handler struct {
	pipe *pipe.Pipe
}

// statsResponse decorates the counters with lifecycle information so a
// dashboard can tell a quiet pipeline from a dead one.
type statsResponse struct {
	myo.Stats
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func (h handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h handler) stats(w http.ResponseWriter, _ *http.Request) {
	resp := statsResponse{
		Stats: h.pipe.Stats(),
		State: h.pipe.State().String(),
	}
	if err := h.pipe.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, resp)
}

// latestResult returns the next unseen result, 204 if none is available.
func (h handler) latestResult(w http.ResponseWriter, _ *http.Request) {
	r, ok := h.pipe.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, resultResponse(r))
}

func (h handler) metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, metric.GetAll())
}

type result struct {
	Features   interface{} `json:"features"`
	Class      *int        `json:"class,omitempty"`
	Time       string      `json:"time"`
	WindowSize int         `json:"window_size"`
}

// resultResponse strips the signal buffers: consumers polling over HTTP
// want the decision and the features, not kilobytes of samples.
func resultResponse(r myo.Result) result {
	resp := result{
		Features:   r.Features,
		Time:       r.Time.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		WindowSize: len(r.Raw),
	}
	if r.Classified {
		class := r.Class
		resp.Class = &class
	}
	return resp
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
