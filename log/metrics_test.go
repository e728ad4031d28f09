//go:build unit
// +build unit

package log

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/qpatch-dev/smartlayout/core"
	"github.com/stretchr/testify/assert"
)

func TestMetricsLoggerWritesDailyJSONLines(t *testing.T) {
	dir := t.TempDir()
	m, err := NewMetricsLogger(dir)
	assert.Nil(t, err)
	defer m.Close()

	meta := &core.SelectionMetadata{
		RunID:          "run-1",
		DeviceName:     "anemone",
		PhysicalQubits: []int{0, 1, 2},
		TotalCost:      0.42,
		Seed:           1,
		RestartCosts:   make([]core.RestartOutcome, 20),
	}
	m.LogSelection(meta, 3)

	name := filepath.Join(dir, "selection-"+time.Now().Format("2006-01-02")+".log")
	raw, err := os.ReadFile(name)
	assert.Nil(t, err)

	var record map[string]interface{}
	assert.Nil(t, json.Unmarshal(raw, &record))
	assert.Equal(t, "run-1", record["run_id"])
	assert.Equal(t, "anemone", record["device_name"])
	assert.Equal(t, 0.42, record["total_cost"])
	assert.Equal(t, float64(20), record["restarts"])
	assert.Equal(t, float64(3), record["queue_length"])
}

func TestNewMetricsLoggerRejectsUnwritableDir(t *testing.T) {
	_, err := NewMetricsLogger(filepath.Join(t.TempDir(), "missing"))
	assert.NotNil(t, err)
}

func TestLogSelectionNilMetadataIsNoop(t *testing.T) {
	m, err := NewMetricsLogger(t.TempDir())
	assert.Nil(t, err)
	defer m.Close()
	m.LogSelection(nil, 0)
}
