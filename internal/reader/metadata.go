package reader

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// Institution is one row of the institutional-characteristics (HD)
// extract with its raw classification codes. Codes are -1 when the cell
// was blank or unparseable; the enricher maps those to Unknown.
type Institution struct {
	UnitID      int64
	Name        string
	State       string
	ControlCode int
	LevelCode   int
	SectorCode  int
}

// hdRow mirrors the HD file header for csvutil decoding. Everything
// stays as strings because IPEDS ships blanks and suppression flags in
// the code columns, and unparseable ids must drop the row rather than
// abort the decode.
type hdRow struct {
	UnitID  string `csv:"UnitID"`
	Name    string `csv:"Institution Name"`
	State   string `csv:"STATE"`
	Control string `csv:"CONTROL"`
	Level   string `csv:"LEVEL"`
	Sector  string `csv:"SECTOR"`
}

// MetadataTable holds the parsed institutional metadata plus the count
// of rows dropped for unparseable ids.
type MetadataTable struct {
	Path         string
	Institutions []Institution
	DroppedRows  int
}

// ReadInstitutions loads the metadata extract, dispatching on file
// extension: .xlsx goes through the spreadsheet reader, everything else
// is treated as CSV.
func ReadInstitutions(path string) (*MetadataTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readInstitutionsXLSX(path)
	}
	return readInstitutionsCSV(path)
}

func readInstitutionsCSV(path string) (*MetadataTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reader: open metadata extract %s", path)
	}

	// IPEDS HD files frequently ship as Windows-1252 rather than UTF-8.
	if !utf8.Valid(raw) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "reader: decode metadata extract %s", path)
		}
		raw = decoded
		zap.L().Debug("decoded metadata extract from windows-1252", zap.String("path", path))
	}
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrapf(err, "reader: read metadata header %s", path)
	}
	// A header without the id column is a malformed schema, not a pile
	// of droppable rows.
	if _, ok := mapColumns(dec.Header())[strings.ToLower(unitIDCol)]; !ok {
		return nil, eris.Errorf("reader: metadata extract %s has no %q column", path, unitIDCol)
	}

	t := &MetadataTable{Path: path}
	for {
		var row hdRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			t.DroppedRows++
			continue
		}
		inst, ok := toInstitution(row)
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

func toInstitution(row hdRow) (Institution, bool) {
	id, err := parseUnitID(row.UnitID)
	if err != nil {
		return Institution{}, false
	}
	return Institution{
		UnitID:      id,
		Name:        trimQuotes(row.Name),
		State:       trimQuotes(row.State),
		ControlCode: parseIntOr(row.Control, -1),
		LevelCode:   parseIntOr(row.Level, -1),
		SectorCode:  parseIntOr(row.Sector, -1),
	}, true
}

// parseUnitID parses an entity id cell, tolerating spreadsheet float
// formatting like "111100.0".
func parseUnitID(s string) (int64, error) {
	s = trimQuotes(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}
