package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/ratetune/internal/autotune"
	"github.com/san-kum/ratetune/internal/dynamo"
	"github.com/san-kum/ratetune/internal/flight"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Airframe   string             `json:"airframe"`
	Maneuver   string             `json:"maneuver"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Metrics    map[string]float64 `json:"metrics"`
	FinalGains autotune.GainSet   `json:"final_gains"`
}

// Save writes one tuning run: metadata.json, the rate trajectory in
// states.csv and the gain/regime history in gains.csv.
func (s *Store) Save(airframe, maneuver, integrator string, dt, duration float64, seed int64, result *dynamo.Result, records []flight.Record, finalGains autotune.GainSet) (string, error) {
	runID := fmt.Sprintf("%s_%d", airframe, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Airframe:   airframe,
		Maneuver:   maneuver,
		Timestamp:  time.Now(),
		Seed:       seed,
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		Metrics:    result.Metrics,
		FinalGains: finalGains,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := s.writeStates(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}

	if err := s.writeGains(filepath.Join(runDir, "gains.csv"), records); err != nil {
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

func (s *Store) writeStates(path string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time", "roll", "pitch", "yaw", "u_roll", "u_pitch", "u_yaw"}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if i < len(result.Controls) {
			for _, val := range result.Controls[i] {
				row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
			}
		} else {
			row = append(row, "0", "0", "0")
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) writeGains(path string, records []flight.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"time", "status"}
	for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
		header = append(header,
			axis.String()+"_p", axis.String()+"_i", axis.String()+"_ff", axis.String()+"_regime")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			strconv.FormatFloat(rec.Time, 'f', 6, 64),
			rec.Status.String(),
		}
		for axis := autotune.AxisRoll; axis < autotune.AxisCount; axis++ {
			g := rec.Gains[axis]
			row = append(row,
				strconv.FormatFloat(g.P, 'f', 4, 64),
				strconv.FormatFloat(g.I, 'f', 4, 64),
				strconv.FormatFloat(g.FF, 'f', 4, 64),
				rec.Regimes[axis].String(),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

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

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadStates returns the rate trajectory: one row per tick plus times.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	return s.loadCSVFloats(runID, "states.csv")
}

// LoadGains returns per-tick gain values (P, I, FF per axis, numeric
// columns only) plus times.
func (s *Store) LoadGains(runID string) ([][]float64, []float64, error) {
	return s.loadCSVFloats(runID, "gains.csv")
}

func (s *Store) loadCSVFloats(runID, name string) ([][]float64, []float64, error) {
	csvPath := filepath.Join(s.baseDir, runID, name)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	rows := make([][]float64, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		times = append(times, t)

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				// Non-numeric columns (status, regime) are skipped.
				continue
			}
			row = append(row, val)
		}
		rows = append(rows, row)
	}

	return rows, times, nil
}
