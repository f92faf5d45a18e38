package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadWide(t *testing.T) {
	csv := "UnitID,Institution Name,Graduation rate (DRVGR2021),Graduation rate (DFR2020)\n" +
		"111100,Alpha College,62.5,60\n" +
		"222200,\"Beta, University of\",48,\n"
	path := writeFile(t, "wide.csv", csv)

	table, err := ReadWide(path)
	require.NoError(t, err)

	assert.Len(t, table.Header, 4)
	require.Len(t, table.Rows, 2)
	assert.Zero(t, table.DroppedRows)

	assert.Equal(t, int64(111100), table.Rows[0].UnitID)
	assert.Equal(t, "Alpha College", table.Rows[0].Name)
	assert.Equal(t, "62.5", table.Rows[0].Cells[2])

	assert.Equal(t, int64(222200), table.Rows[1].UnitID)
	assert.Equal(t, "Beta, University of", table.Rows[1].Name)
	assert.Equal(t, "", table.Rows[1].Cells[3])
}

func TestReadWide_DropsUnparseableIDs(t *testing.T) {
	csv := "UnitID,Institution Name,rate (DRVGR2021)\n" +
		"111100,Alpha,62.5\n" +
		"not-a-number,Broken,50\n" +
		",Blank,40\n"
	path := writeFile(t, "wide.csv", csv)

	table, err := ReadWide(path)
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
	assert.Equal(t, 2, table.DroppedRows)
}

func TestReadWide_BOMHeader(t *testing.T) {
	csv := "\ufeffUnitID,rate (DRVGR2021)\n111100,62.5\n"
	path := writeFile(t, "wide.csv", csv)

	table, err := ReadWide(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(111100), table.Rows[0].UnitID)
}

func TestReadWide_MissingUnitIDColumnFatal(t *testing.T) {
	path := writeFile(t, "wide.csv", "Institution Name,rate (DRVGR2021)\nAlpha,50\n")

	_, err := ReadWide(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UnitID")
}

func TestReadWide_MissingFileFatal(t *testing.T) {
	_, err := ReadWide(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
