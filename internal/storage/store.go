package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/kinetic/internal/scene"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Theme  string
	Solver string
	Step   time.Duration
	Limit  time.Duration
}

type RunMetadata struct {
	ID         string                        `json:"id"`
	Scene      string                        `json:"scene"`
	Timestamp  time.Time                     `json:"timestamp"`
	Theme      string                        `json:"theme"`
	Solver     string                        `json:"solver"`
	StepMs     float64                       `json:"step_ms"`
	LimitMs    float64                       `json:"limit_ms"`
	DurationMs float64                       `json:"duration_ms"`
	Settled    bool                          `json:"settled"`
	Frames     int                           `json:"frames"`
	Cells      []string                      `json:"cells"`
	Metrics    map[string]map[string]float64 `json:"metrics"`
}

func (s *Store) Save(res *scene.Result, info RunInfo) (string, error) {
	runID := fmt.Sprintf("%s_%s", res.Scene, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scene:      res.Scene,
		Timestamp:  time.Now(),
		Theme:      info.Theme,
		Solver:     info.Solver,
		StepMs:     millis(info.Step),
		LimitMs:    millis(info.Limit),
		DurationMs: millis(res.Duration),
		Settled:    res.Settled,
		Frames:     len(res.Times),
		Cells:      res.Cells,
		Metrics:    res.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), res); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSamples(path string, res *scene.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time_ms"}, res.Cells...)); err != nil {
		return err
	}

	for i, row := range res.Samples {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, strconv.FormatFloat(millis(res.Times[i]), 'f', 3, 64))
		for _, v := range row {
			rec = append(rec, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadResult rebuilds the recorded result of a run. Events are not stored.
func (s *Store) LoadResult(runID string) (*scene.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("samples file has no header")
	}

	res := &scene.Result{
		Scene:    meta.Scene,
		Cells:    records[0][1:],
		Metrics:  meta.Metrics,
		Settled:  meta.Settled,
		Duration: fromMillis(meta.DurationMs),
		Times:    make([]time.Duration, 0, len(records)-1),
		Samples:  make([][]float64, 0, len(records)-1),
	}

	for i, rec := range records[1:] {
		ms, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		row := make([]float64, len(rec)-1)
		for j, field := range rec[1:] {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("row %d column %s: %w", i+1, res.Cells[j], err)
			}
		}
		res.Times = append(res.Times, fromMillis(ms))
		res.Samples = append(res.Samples, row)
	}

	return res, nil
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }

func fromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
