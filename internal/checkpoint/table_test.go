package checkpoint

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestAppendLevelTable(t *testing.T) {
	s, dir := newTestStore(t)

	path, err := s.AppendLevelTable(dir, []Row{
		{Alpha: 4.0, CL: 0.44, CD: 0.020, FailFlag: 0, WallTime: 8.1},
		{Alpha: 0.0, CL: 0.01, CD: 0.010, FailFlag: 0, WallTime: 7.9},
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, TableFileName), path)

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Alpha", "CL", "CD", "FFlag", "WTime"}, records[0])

	// Sorted ascending by angle of attack.
	assert.Equal(t, "0.00", records[1][0])
	assert.Equal(t, "4.00", records[2][0])
	assert.Equal(t, "0.4400", records[2][1])
	assert.Equal(t, "8.10", records[2][4])
}

func TestAppendLevelTableMergesKeepLatest(t *testing.T) {
	s, dir := newTestStore(t)

	_, err := s.AppendLevelTable(dir, []Row{
		{Alpha: 0.0, CL: 0.01, CD: 0.010, WallTime: 1.0},
		{Alpha: 2.0, CL: 0.20, CD: 0.015, WallTime: 1.0},
	})
	require.NoError(t, err)

	// Second append re-reports 2.0 with new values and adds 6.0.
	path, err := s.AppendLevelTable(dir, []Row{
		{Alpha: 6.0, CL: 0.61, CD: 0.031, WallTime: 2.0},
		{Alpha: 2.0, CL: 0.22, CD: 0.014, WallTime: 2.0},
	})
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 4)
	assert.Equal(t, "0.00", records[1][0])
	assert.Equal(t, "2.00", records[2][0])
	assert.Equal(t, "0.2200", records[2][1], "duplicate keeps the latest row")
	assert.Equal(t, "6.00", records[3][0])
}

func TestAppendLevelTableRebuildsCorruptTable(t *testing.T) {
	s, dir := newTestStore(t)

	path := filepath.Join(dir, TableFileName)
	require.NoError(t, os.WriteFile(path, []byte("Alpha,CL\n\"unterminated\n"), 0o644))

	_, err := s.AppendLevelTable(dir, []Row{{Alpha: 1.0, CL: 0.1, CD: 0.01, WallTime: 1.0}})
	require.NoError(t, err)

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, "1.00", records[1][0])
}

func TestAppendLevelTableFollowerIsNoop(t *testing.T) {
	s := NewStore(false, zap.NewNop())
	dir := t.TempDir()

	path, err := s.AppendLevelTable(dir, []Row{{Alpha: 1.0}})
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
