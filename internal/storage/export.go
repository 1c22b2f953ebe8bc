package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/kinetic/internal/scene"
)

type ExportData struct {
	ID      string                        `json:"id,omitempty"`
	Scene   string                        `json:"scene"`
	Theme   string                        `json:"theme,omitempty"`
	Solver  string                        `json:"solver,omitempty"`
	Settled bool                          `json:"settled"`
	Steps   int                           `json:"steps"`
	TimesMs []float64                     `json:"times_ms"`
	Series  map[string][]float64          `json:"series"`
	Metrics map[string]map[string]float64 `json:"metrics"`
}

// ExportJSON writes a run as one JSON document. meta may be nil for runs
// that were never saved.
func ExportJSON(w io.Writer, meta *RunMetadata, res *scene.Result) error {
	data := ExportData{
		Scene:   res.Scene,
		Settled: res.Settled,
		Steps:   len(res.Times),
		TimesMs: make([]float64, len(res.Times)),
		Series:  make(map[string][]float64, len(res.Cells)),
		Metrics: res.Metrics,
	}
	if meta != nil {
		data.ID = meta.ID
		data.Theme = meta.Theme
		data.Solver = meta.Solver
	}

	for i, t := range res.Times {
		data.TimesMs[i] = millis(t)
	}
	for _, name := range res.Cells {
		data.Series[name] = res.Series(name)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
