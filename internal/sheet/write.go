package sheet

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
)

const sheetName = "Sheet1"

// WriteCompasses saves a catalog readable by Compasses.
func WriteCompasses(path string, compasses []*compass.Compass) error {
	f := excelize.NewFile()
	defer f.Close()

	labels := make([]string, 0, 16)
	for k := range compass.R500().GetParams() {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	header := []interface{}{"name", "unit", "note"}
	for _, c := range compasses {
		header = append(header, c.Name)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, label := range labels {
		row := []interface{}{label, "SI", ""}
		for _, c := range compasses {
			row = append(row, c.GetParams()[label])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("sheet: save %s: %w", path, err)
	}
	return nil
}

// WriteSeries saves a two column time / angle sheet readable by SeriesXLSX.
func WriteSeries(path string, s dynamic.Series) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &[]interface{}{"time_s", "angle_deg"}); err != nil {
		return err
	}
	for i := range s.Time {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]interface{}{s.Time[i], s.Angle[i]}); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("sheet: save %s: %w", path, err)
	}
	return nil
}
