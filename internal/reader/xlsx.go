package reader

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
)

// readInstitutionsXLSX loads the metadata extract from the first sheet
// of an XLSX workbook. The first row is the header; the same column
// names as the CSV form are expected.
func readInstitutionsXLSX(path string) (*MetadataTable, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reader: open metadata workbook %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("reader: metadata workbook %s has no sheets", path)
	}
	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("reader: metadata workbook %s has no header row", path)
	}

	header := rowToStrings(sheet.Rows[0])
	colIdx := mapColumns(header)
	if _, ok := colIdx["unitid"]; !ok {
		return nil, eris.Errorf("reader: metadata workbook %s has no UnitID column", path)
	}

	t := &MetadataTable{Path: path}
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		inst, ok := toInstitution(hdRow{
			UnitID:  getCol(cells, colIdx, "UnitID"),
			Name:    getCol(cells, colIdx, "Institution Name"),
			State:   getCol(cells, colIdx, "STATE"),
			Control: getCol(cells, colIdx, "CONTROL"),
			Level:   getCol(cells, colIdx, "LEVEL"),
			Sector:  getCol(cells, colIdx, "SECTOR"),
		})
		if !ok {
			t.DroppedRows++
			continue
		}
		t.Institutions = append(t.Institutions, inst)
	}

	if t.DroppedRows > 0 {
		zap.L().Warn("dropped metadata rows with unparseable unitid",
			zap.String("path", path),
			zap.Int("dropped", t.DroppedRows),
		)
	}
	return t, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
