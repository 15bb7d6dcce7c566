package export

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/popdyn/internal/experiment"
)

// Number encodes NaN and Inf as null, which encoding/json rejects otherwise.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	if !finite(float64(n)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(n), 'g', -1, 64)), nil
}

type RunData struct {
	Model     string             `json:"model"`
	Params    map[string]float64 `json:"params"`
	Steps     int                `json:"steps"`
	States    [][]Number         `json:"states"`
	Metrics   map[string]Number  `json:"metrics"`
	ElapsedMs float64            `json:"elapsed_ms"`
}

func NewRunData(r *experiment.Result) RunData {
	data := RunData{
		Model:     r.Model,
		Params:    r.Params,
		Steps:     max(r.Trajectory.Len()-1, 0),
		States:    make([][]Number, len(r.Trajectory)),
		Metrics:   make(map[string]Number, len(r.Metrics)),
		ElapsedMs: float64(r.Elapsed.Microseconds()) / 1000,
	}
	for i, s := range r.Trajectory {
		row := make([]Number, len(s))
		for j, v := range s {
			row[j] = Number(v)
		}
		data.States[i] = row
	}
	for k, v := range r.Metrics {
		data.Metrics[k] = Number(v)
	}
	return data
}

// WriteJSON writes an indented JSON document describing the run.
func WriteJSON(w io.Writer, r *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewRunData(r))
}
