package checkpoint

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/flowlab/simsweep/internal/model"
)

// TableFileName is the per-level results table written next to the unit
// directories.
const TableFileName = "results.csv"

var tableHeader = []string{"Alpha", "CL", "CD", "FFlag", "WTime"}

// Row is one successful condition unit in a level results table.
type Row struct {
	Alpha    float64
	CL       float64
	CD       float64
	FailFlag int
	WallTime float64
}

// AppendLevelTable merges new rows into the level's results table. Rows are
// keyed by angle of attack; duplicates keep the latest row and the table is
// re-sorted ascending before it is replaced on disk. Returns the table path.
func (s *Store) AppendLevelTable(levelDir string, rows []Row) (string, error) {
	path := filepath.Join(levelDir, TableFileName)
	if !s.leader {
		return path, nil
	}

	existing := s.readTable(path)

	merged := make(map[string]Row, len(existing)+len(rows))
	for _, r := range existing {
		merged[model.ConditionKey(r.Alpha)] = r
	}
	for _, r := range rows {
		merged[model.ConditionKey(r.Alpha)] = r
	}

	out := make([]Row, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alpha < out[j].Alpha })

	if err := s.writeTable(path, out); err != nil {
		return "", err
	}
	return path, nil
}

// readTable loads the current table. An absent or malformed table starts
// fresh; individual malformed rows are dropped.
func (s *Store) readTable(path string) []Row {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		s.log.Warn("level table unreadable, rebuilding from new rows",
			zap.String("path", path), zap.Error(err))
		return nil
	}

	var rows []Row
	for i, rec := range records {
		if i == 0 || len(rec) != len(tableHeader) {
			continue
		}
		alpha, errA := strconv.ParseFloat(rec[0], 64)
		cl, errL := strconv.ParseFloat(rec[1], 64)
		cd, errD := strconv.ParseFloat(rec[2], 64)
		flag, errF := strconv.Atoi(rec[3])
		wt, errW := strconv.ParseFloat(rec[4], 64)
		if errA != nil || errL != nil || errD != nil || errF != nil || errW != nil {
			continue
		}
		rows = append(rows, Row{Alpha: alpha, CL: cl, CD: cd, FailFlag: flag, WallTime: wt})
	}
	return rows
}

// writeTable replaces the table with whole-file semantics.
func (s *Store) writeTable(path string, rows []Row) error {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, tableHeader)
	for _, r := range rows {
		records = append(records, []string{
			strconv.FormatFloat(r.Alpha, 'f', 2, 64),
			strconv.FormatFloat(r.CL, 'f', 4, 64),
			strconv.FormatFloat(r.CD, 'f', 4, 64),
			strconv.Itoa(r.FailFlag),
			strconv.FormatFloat(r.WallTime, 'f', 2, 64),
		})
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("failed to encode level table: %w", err)
	}
	cw.Flush()

	return replaceFile(path, buf.Bytes())
}
