package monitor

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Status is the JSON body served on /status
type Status struct {
	State     string `json:"state"`
	Sensors   string `json:"sensors"`
	Left      string `json:"left"`
	LeftDuty  uint8  `json:"left_duty"`
	Right     string `json:"right"`
	RightDuty uint8  `json:"right_duty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// NewServer routes /status to the monitor's last frame and /metrics to the gatherer
func NewServer(m *Monitor, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		f, ok := m.Last()
		if !ok {
			http.Error(w, "no telemetry received", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Status{
			State:     f.State.String(),
			Sensors:   f.Reading.String(),
			Left:      f.Command.Left.Direction.String(),
			LeftDuty:  f.Command.Left.Duty,
			Right:     f.Command.Right.Direction.String(),
			RightDuty: f.Command.Right.Duty,
			ElapsedMS: f.Elapsed.Milliseconds(),
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
