package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/experiment"
)

var ErrNotFound = errors.New("storage: run not found")

const metadataFile = "metadata.json"

// Store keeps one directory per experiment: metadata.json plus one
// <test>.csv of (time, angle, omega) per run.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Tests     []string           `json:"tests"`
	Report    *experiment.Report `json:"report"`
}

// Save writes the report and its runs and returns the new run id.
func (s *Store) Save(report *experiment.Report, runs map[experiment.Test]*dynamic.Run) (string, error) {
	runID := fmt.Sprintf("%s_%s", slug(report.Compass), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: s.now().UTC(),
		Report:    report,
	}
	for _, t := range experiment.AllTests() {
		run, ok := runs[t]
		if !ok {
			continue
		}
		meta.Tests = append(meta.Tests, string(t))
		if err := writeFile(filepath.Join(runDir, string(t)+".csv"), func(w io.Writer) error {
			return WriteCSV(w, run)
		}); err != nil {
			return "", err
		}
	}

	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, name)
}

// List returns the stored runs, newest first. Directories without readable
// metadata are skipped.
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

// Trace is a stored run read back from disk.
type Trace struct {
	Times  []float64 `json:"times"`
	Angles []float64 `json:"angles"`
	Omegas []float64 `json:"omegas"`
}

func (s *Store) LoadTrace(runID string, test experiment.Test) (*Trace, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, string(test)+".csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, runID, test)
		}
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// WriteCSV writes a run as time, angle and omega columns.
func WriteCSV(w io.Writer, run *dynamic.Run) error {
	cw := csv.NewWriter(w)
	header := []string{"time", "angle_" + run.Unit().String(), "omega"}
	if err := cw.Write(header); err != nil {
		return err
	}

	times, angles, omegas := run.Times(), run.Angles(), run.AngularVelocity()
	for i := range times {
		row := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(angles[i], 'g', -1, 64),
			strconv.FormatFloat(omegas[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (*Trace, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("storage: missing header")
	}

	tr := &Trace{}
	for i, rec := range records[1:] {
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.Angles = append(tr.Angles, vals[1])
		tr.Omegas = append(tr.Omegas, vals[2])
	}
	return tr, nil
}

// CopyTrace streams the stored csv of one test.
func (s *Store) CopyTrace(w io.Writer, runID string, test experiment.Test) error {
	f, err := os.Open(filepath.Join(s.baseDir, runID, string(test)+".csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, runID, test)
		}
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}
