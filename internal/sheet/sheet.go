package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
)

var (
	ErrEmptySeries = errors.New("sheet: no data rows")
	ErrMalformed   = errors.New("sheet: malformed cell")
)

const (
	compassFirstColumn  = 3
	locationFirstColumn = 1
)

func firstSheetRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("sheet: %s has no worksheet", path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("sheet: read %s: %w", path, err)
	}
	return rows, nil
}

// columns turns a label-in-first-column sheet into one map per data column.
func columns(rows [][]string, first int) []map[string]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	var out []map[string]string
	for col := first; col < width; col++ {
		entry := make(map[string]string)
		for _, row := range rows {
			if len(row) == 0 || strings.TrimSpace(row[0]) == "" || col >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[col]); v != "" {
				entry[strings.TrimSpace(row[0])] = v
			}
		}
		if len(entry) > 0 {
			out = append(out, entry)
		}
	}
	return out
}

func parse(label, value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q", ErrMalformed, label, value)
	}
	return v, nil
}

// Compasses reads a compass catalog. Every compass is validated.
func Compasses(path string) ([]*compass.Compass, error) {
	rows, err := firstSheetRows(path)
	if err != nil {
		return nil, err
	}
	var out []*compass.Compass
	for i, entry := range columns(rows, compassFirstColumn) {
		c := compass.R500()
		c.Name = fmt.Sprintf("compass-%d", i+1)
		for label, value := range entry {
			if label == "name" {
				c.Name = value
				continue
			}
			v, err := parse(label, value)
			if err != nil {
				return nil, fmt.Errorf("%s column %d: %w", path, compassFirstColumn+i+1, err)
			}
			if err := c.SetParam(label, v); err != nil {
				return nil, fmt.Errorf("%s column %d: %w", path, compassFirstColumn+i+1, err)
			}
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Locations reads a location catalog with rows name, lat, lon, intensity
// (T, also accepted as int) and i_deg.
func Locations(path string) ([]*compass.Field, error) {
	rows, err := firstSheetRows(path)
	if err != nil {
		return nil, err
	}
	var out []*compass.Field
	for i, entry := range columns(rows, locationFirstColumn) {
		name := entry["name"]
		if name == "" {
			name = fmt.Sprintf("location-%d", i+1)
		}
		if _, ok := entry["intensity"]; !ok && entry["int"] != "" {
			entry["intensity"] = entry["int"]
		}
		values := make(map[string]float64)
		for _, label := range []string{"intensity", "i_deg", "lat", "lon"} {
			raw, ok := entry[label]
			if !ok {
				continue
			}
			v, err := parse(label, raw)
			if err != nil {
				return nil, fmt.Errorf("%s column %d: %w", path, locationFirstColumn+i+1, err)
			}
			values[label] = v
		}
		intensity, ok1 := values["intensity"]
		incl, ok2 := values["i_deg"]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("%s column %d: %w: intensity and i_deg are required", path, locationFirstColumn+i+1, ErrMalformed)
		}
		var opts []compass.FieldOption
		lat, okLat := values["lat"]
		lon, okLon := values["lon"]
		if okLat && okLon {
			opts = append(opts, compass.WithLocation(lat, lon))
		}
		f, err := compass.NewField(name, intensity, incl, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func seriesFromRecords(records [][]string) (dynamic.Series, error) {
	var s dynamic.Series
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < 2 || (strings.TrimSpace(rec[0]) == "" && strings.TrimSpace(rec[1]) == "") {
			continue
		}
		t, err := parse("time", strings.TrimSpace(rec[0]))
		if err != nil {
			return dynamic.Series{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		a, err := parse("angle", strings.TrimSpace(rec[1]))
		if err != nil {
			return dynamic.Series{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		s.Time = append(s.Time, t)
		s.Angle = append(s.Angle, a)
	}
	if s.Len() == 0 {
		return dynamic.Series{}, ErrEmptySeries
	}
	return s, s.Validate()
}

// SeriesXLSX reads a measured series from the first worksheet.
func SeriesXLSX(path string) (dynamic.Series, error) {
	rows, err := firstSheetRows(path)
	if err != nil {
		return dynamic.Series{}, err
	}
	s, err := seriesFromRecords(rows)
	if err != nil {
		return dynamic.Series{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// SeriesCSV reads a measured series from comma or semicolon separated text.
func SeriesCSV(r io.Reader) (dynamic.Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return dynamic.Series{}, err
	}
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if strings.Count(string(data), ";") > strings.Count(string(data), ",") {
		reader.Comma = ';'
	}
	records, err := reader.ReadAll()
	if err != nil {
		return dynamic.Series{}, fmt.Errorf("sheet: %w", err)
	}
	return seriesFromRecords(records)
}
