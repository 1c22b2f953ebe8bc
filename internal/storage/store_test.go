package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/kinetic/internal/scene"
)

func sampleResult() *scene.Result {
	return &scene.Result{
		Scene: "press",
		Cells: []string{"scale", "opacity"},
		Times: []time.Duration{0, 16 * time.Millisecond, 32 * time.Millisecond},
		Samples: [][]float64{
			{1, 0},
			{0.97, 0.5},
			{1, 1},
		},
		Metrics: map[string]map[string]float64{
			"scale": {"overshoot": 0.25},
		},
		Settled:  true,
		Duration: 32 * time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save(sampleResult(), RunInfo{Theme: "default", Solver: "rk4", Step: 16 * time.Millisecond, Limit: time.Second})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "press_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "press" || meta.Solver != "rk4" || meta.StepMs != 16 || meta.Frames != 3 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Metrics["scale"]["overshoot"] != 0.25 {
		t.Errorf("expected overshoot 0.25, got %v", meta.Metrics["scale"]["overshoot"])
	}

	res, err := st.LoadResult(runID)
	if err != nil {
		t.Fatalf("load result failed: %v", err)
	}
	if len(res.Times) != 3 || res.Times[2] != 32*time.Millisecond {
		t.Errorf("unexpected times %v", res.Times)
	}
	if got := res.Series("opacity"); len(got) != 3 || got[1] != 0.5 {
		t.Errorf("unexpected opacity series %v", got)
	}
	if !res.Settled || res.Duration != 32*time.Millisecond {
		t.Errorf("settled=%v duration=%v", res.Settled, res.Duration)
	}
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("expected empty list, got %v (%v)", runs, err)
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(sampleResult(), RunInfo{}); err != nil {
			t.Fatal(err)
		}
	}
	os.MkdirAll(filepath.Join(dir, "junk"), 0755)

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Error("run ids should be unique")
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("expected newest run first")
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadResult("nope"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSON(&buf, &RunMetadata{ID: "press_1", Theme: "calm"}, sampleResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != "press_1" || data.Theme != "calm" || data.Steps != 3 {
		t.Errorf("unexpected export header %+v", data)
	}
	if data.TimesMs[1] != 16 || data.Series["scale"][1] != 0.97 {
		t.Errorf("unexpected series %v %v", data.TimesMs, data.Series)
	}
}
