package executor

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/flowlab/simsweep/internal/model"
)

// resultMarker delimits the single structured line a worker may print. The
// line has the exact form ::RESULT::{json}::RESULT:: and is the sole result
// channel from child to parent; all other output is diagnostic.
const resultMarker = "::RESULT::"

// ParseResultLine extracts the metrics mapping from one line of worker
// output. The second return is false when the line is not a result marker.
func ParseResultLine(line string) (map[string]model.UnitMetrics, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, resultMarker) || !strings.HasSuffix(line, resultMarker) {
		return nil, false
	}
	payload := line[len(resultMarker) : len(line)-len(resultMarker)]
	if payload == "" {
		return nil, false
	}

	var results map[string]model.UnitMetrics
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, false
	}
	return results, true
}

// ScanResults reads worker output line by line, returning the metrics from
// the first result marker found. Every line, marker included, is copied to
// sink when sink is non-nil. Absence of a marker yields an empty mapping:
// the batch produced zero new successes.
func ScanResults(r io.Reader, sink io.Writer) map[string]model.UnitMetrics {
	var results map[string]model.UnitMetrics

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if sink != nil {
			io.WriteString(sink, line+"\n")
		}
		if results == nil {
			if parsed, ok := ParseResultLine(line); ok {
				results = parsed
			}
		}
	}

	if results == nil {
		return map[string]model.UnitMetrics{}
	}
	return results
}
