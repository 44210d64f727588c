// Package sheet reads and writes the spreadsheets used around the
// simulator: compass catalogs, location catalogs and measured rapidity
// series.
//
// Catalog layout (first worksheet):
//
//	name           | unit | note | R500   | R900   | ...
//	needle_length  | m    |      | 0.032  | 0.034  | ...
//
// Row labels sit in the first column. Compass catalogs start their data at
// the fourth column, location catalogs at the second. Cells left empty keep
// the default of the R500 compass.
//
// Measured series have a header row followed by time (s) and angle (deg)
// columns, in xlsx or csv form.
package sheet
