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

	"github.com/san-kum/orbsim/internal/astro"
	"github.com/san-kum/orbsim/internal/experiment"
	"github.com/san-kum/orbsim/internal/vmath"
)

var ErrNoSuchBody = errors.New("storage: body not in run")

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
	ID          string             `json:"id"`
	Scene       string             `json:"scene"`
	Timestamp   time.Time          `json:"timestamp"`
	Step        float64            `json:"step"`  // wall seconds per tick
	Scale       float64            `json:"scale"` // simulated seconds per wall second
	Ticks       int                `json:"ticks"`
	StartJD     float64            `json:"start_jd"`
	EndJD       float64            `json:"end_jd"`
	Bodies      []string           `json:"bodies"`
	Frozen      int                `json:"frozen"`
	WallSeconds float64            `json:"wall_seconds"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Record is one row of states.csv.
type Record struct {
	Tick     uint64
	JD       astro.JulianDate
	Elapsed  float64
	Body     string
	Mass     float64
	Position vmath.Vec3
	Velocity vmath.Vec3
	Frozen   bool
}

var header = []string{"tick", "jd", "elapsed", "body", "mass", "x", "y", "z", "vx", "vy", "vz", "frozen"}

func (s *Store) Save(scene string, step, scale float64, result *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", scene, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scene:       scene,
		Timestamp:   now,
		Step:        step,
		Scale:       scale,
		Ticks:       result.Ticks,
		StartJD:     float64(result.Start),
		EndJD:       float64(result.End),
		Frozen:      len(result.Frozen),
		WallSeconds: result.WallTime.Seconds(),
		Metrics:     result.Metrics,
	}
	if len(result.Samples) > 0 {
		for _, b := range result.Samples[0].Bodies {
			meta.Bodies = append(meta.Bodies, b.Name)
		}
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, "states.csv"), result.Samples); err != nil {
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

func writeStates(path string, samples []experiment.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}

	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', 17, 64) }
	for _, smp := range samples {
		for _, b := range smp.Bodies {
			row := []string{
				strconv.FormatUint(smp.Tick, 10),
				strconv.FormatFloat(float64(smp.Time), 'f', 9, 64),
				ff(smp.Elapsed),
				b.Name,
				ff(b.Mass),
				ff(b.Position.X), ff(b.Position.Y), ff(b.Position.Z),
				ff(b.Velocity.X), ff(b.Velocity.Y), ff(b.Velocity.Z),
				strconv.FormatBool(b.Frozen),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every run under the base directory, newest first.
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
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([]Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	records := make([]Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRecord(row)
		if err != nil {
			return nil, fmt.Errorf("storage: %s line %d: %w", runID, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(row []string) (Record, error) {
	var rec Record
	var err error
	if rec.Tick, err = strconv.ParseUint(row[0], 10, 64); err != nil {
		return rec, err
	}
	nums := make([]float64, 0, 9)
	for _, idx := range []int{1, 2, 4, 5, 6, 7, 8, 9, 10} {
		v, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			return rec, err
		}
		nums = append(nums, v)
	}
	if rec.Frozen, err = strconv.ParseBool(row[11]); err != nil {
		return rec, err
	}
	rec.JD = astro.JulianDate(nums[0])
	rec.Elapsed = nums[1]
	rec.Body = row[3]
	rec.Mass = nums[2]
	rec.Position = vmath.Vec3{X: nums[3], Y: nums[4], Z: nums[5]}
	rec.Velocity = vmath.Vec3{X: nums[6], Y: nums[7], Z: nums[8]}
	return rec, nil
}

// Series extracts one body's records in file order.
func Series(records []Record, body string) ([]Record, error) {
	var out []Record
	for _, r := range records {
		if r.Body == body {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchBody, body)
	}
	return out, nil
}
