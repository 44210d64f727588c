package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/compassim/internal/dynamic"
	"github.com/san-kum/compassim/internal/experiment"
)

type ExportRun struct {
	Unit     string             `json:"unit"`
	Steps    int                `json:"steps"`
	Rejected int                `json:"rejected"`
	Times    []float64          `json:"times"`
	Angles   []float64          `json:"angles"`
	Omegas   []float64          `json:"omegas"`
	Metrics  map[string]float64 `json:"metrics"`
}

type ExportData struct {
	Report *experiment.Report   `json:"report"`
	Runs   map[string]ExportRun `json:"runs"`
}

// ExportJSON writes the report together with every trajectory.
func ExportJSON(w io.Writer, report *experiment.Report, runs map[experiment.Test]*dynamic.Run) error {
	data := ExportData{
		Report: report,
		Runs:   make(map[string]ExportRun, len(runs)),
	}
	for t, run := range runs {
		data.Runs[string(t)] = ExportRun{
			Unit:     run.Unit().String(),
			Steps:    run.Steps(),
			Rejected: run.Rejected(),
			Times:    run.Times(),
			Angles:   run.Angles(),
			Omegas:   run.AngularVelocity(),
			Metrics:  run.Metrics(),
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

type StoredExport struct {
	Metadata *RunMetadata      `json:"metadata"`
	Traces   map[string]*Trace `json:"traces"`
}

// Export writes a stored run, metadata and traces, as JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	out := StoredExport{Metadata: meta, Traces: make(map[string]*Trace, len(meta.Tests))}
	for _, name := range meta.Tests {
		tr, err := s.LoadTrace(runID, experiment.Test(name))
		if err != nil {
			return err
		}
		out.Traces[name] = tr
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
