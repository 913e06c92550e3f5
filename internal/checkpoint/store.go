package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flowlab/simsweep/internal/model"
)

// LoadStatus classifies the outcome of a unit record lookup. Corrupt and
// NotFound both make the unit pending again, but they are reported apart.
type LoadStatus int

const (
	Found LoadStatus = iota
	NotFound
	Corrupt
)

// LoadResult carries the record when Status is Found.
type LoadResult struct {
	Status LoadStatus
	Record model.CheckpointRecord
}

// Store reads and writes per-unit checkpoint records and per-level results
// tables under the output directory tree. Every skip decision is re-derived
// from disk, which is what makes reruns idempotent across process restarts.
type Store struct {
	leader bool
	log    *zap.Logger
}

// NewStore creates a checkpoint store. Only the leader process performs
// writes; followers run the same code but their mutations are no-ops.
func NewStore(leader bool, log *zap.Logger) *Store {
	return &Store{
		leader: leader,
		log:    log,
	}
}

// UnitDir returns the output directory of one condition unit.
func (s *Store) UnitDir(levelDir string, aoa float64) string {
	return filepath.Join(levelDir, model.ConditionKey(aoa))
}

// UnitFile returns the checkpoint record path of one condition unit.
func (s *Store) UnitFile(levelDir string, aoa float64) string {
	key := model.ConditionKey(aoa)
	return filepath.Join(levelDir, key, key+".yaml")
}

// LoadUnit reads the checkpoint record for one condition unit. A missing file
// is NotFound; an unreadable or unparsable file is Corrupt. Neither is an
// error to the caller: both force the unit back to pending.
func (s *Store) LoadUnit(levelDir string, aoa float64) LoadResult {
	path := s.UnitFile(levelDir, aoa)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{Status: NotFound}
		}
		s.log.Warn("checkpoint record unreadable, treating unit as pending",
			zap.String("path", path), zap.Error(err))
		return LoadResult{Status: Corrupt}
	}

	var rec model.CheckpointRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		s.log.Warn("checkpoint record corrupt, treating unit as pending",
			zap.String("path", path), zap.Error(err))
		return LoadResult{Status: Corrupt}
	}

	return LoadResult{Status: Found, Record: rec}
}

// SaveUnit writes a checkpoint record with whole-file replace semantics so a
// concurrent reader never observes a partial record.
func (s *Store) SaveUnit(levelDir string, aoa float64, rec model.CheckpointRecord) error {
	if !s.leader {
		return nil
	}

	dir := s.UnitDir(levelDir, aoa)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint record: %w", err)
	}

	return replaceFile(s.UnitFile(levelDir, aoa), data)
}

// replaceFile writes data to a uniquely named temp file in the target
// directory and renames it over the destination.
func replaceFile(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
