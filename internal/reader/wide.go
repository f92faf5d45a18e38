// Package reader loads the raw IPEDS extracts: the wide graduation-rate
// file and the institutional-characteristics (HD) file. It does type
// coercion only; all business rules live downstream.
package reader

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	unitIDCol   = "UnitID"
	instNameCol = "Institution Name"
)

// WideTable is the raw wide extract: header verbatim, cells as strings.
type WideTable struct {
	Path        string
	Header      []string
	Rows        []WideRow
	DroppedRows int // rows whose UnitID failed to parse
}

// WideRow is one institution row. Cells is positionally aligned with
// the table header.
type WideRow struct {
	UnitID int64
	Name   string
	Cells  []string
}

// ReadWide loads a wide graduation-rate CSV. Rows with an unparseable
// UnitID are dropped and counted, never silently kept. A missing UnitID
// column is a malformed schema and fatal.
func ReadWide(path string) (*WideTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "reader: open wide extract %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "reader: read wide header %s", path)
	}
	header[0] = stripBOM(header[0])

	colIdx := mapColumns(header)
	idIdx, ok := colIdx[strings.ToLower(unitIDCol)]
	if !ok {
		return nil, eris.Errorf("reader: wide extract %s has no %q column", path, unitIDCol)
	}
	nameIdx, hasName := colIdx[strings.ToLower(instNameCol)]

	t := &WideTable{Path: path, Header: header}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.DroppedRows++
			continue
		}
		if idIdx >= len(record) {
			t.DroppedRows++
			continue
		}
		id, err := strconv.ParseInt(trimQuotes(record[idIdx]), 10, 64)
		if err != nil {
			t.DroppedRows++
			continue
		}
		row := WideRow{UnitID: id, Cells: record}
		if hasName && nameIdx < len(record) {
			row.Name = trimQuotes(record[nameIdx])
		}
		t.Rows = append(t.Rows, row)
	}

	if t.DroppedRows > 0 {
		zap.L().Warn("dropped wide rows with unparseable unitid",
			zap.String("path", path),
			zap.Int("dropped", t.DroppedRows),
		)
	}
	return t, nil
}

func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
