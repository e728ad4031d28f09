package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/qpatch-dev/smartlayout/common"
	"github.com/qpatch-dev/smartlayout/core"
	"go.uber.org/zap"
)

const (
	runIDKeyInMetrics       = "run_id"
	deviceKeyInMetrics      = "device_name"
	patchKeyInMetrics       = "physical_qubits"
	costKeyInMetrics        = "total_cost"
	seedKeyInMetrics        = "seed"
	restartsKeyInMetrics    = "restarts"
	queueLengthKeyInMetrics = "queue_length"
)

// MetricsLogger appends one JSON line per completed selection to a
// daily-rotated file, for external benchmarking to scrape.
type MetricsLogger struct {
	dl     *dailyLogger
	logger *slog.Logger
}

func NewMetricsLogger(fileDir string) (*MetricsLogger, error) {
	if err := common.IsDirWritable(fileDir); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	dl := newDailyLogger(fileDir)
	return &MetricsLogger{
		dl:     dl,
		logger: slog.New(slog.NewJSONHandler(dl, nil)),
	}, nil
}

func (m *MetricsLogger) LogSelection(meta *core.SelectionMetadata, queueLength int) {
	if meta == nil {
		zap.L().Debug("no selection metadata to log")
		return
	}
	m.logger.Info(
		"Selection",
		slog.String(runIDKeyInMetrics, meta.RunID),
		slog.String(deviceKeyInMetrics, meta.DeviceName),
		slog.Any(patchKeyInMetrics, meta.PhysicalQubits),
		slog.Float64(costKeyInMetrics, meta.TotalCost),
		slog.Int64(seedKeyInMetrics, meta.Seed),
		slog.Int(restartsKeyInMetrics, len(meta.RestartCosts)),
		slog.Int(queueLengthKeyInMetrics, queueLength),
	)
}

func (m *MetricsLogger) Close() {
	if err := m.dl.Close(); err != nil {
		zap.L().Error("failed to close metrics logger", zap.Error(err))
	}
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	currentFileName string
	file            *os.File
}

func newDailyLogger(fileDir string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
	}
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := fmt.Sprintf("selection-%s.log", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dl.fileDir, fileName)
	currentFilePath := filepath.Join(dl.fileDir, dl.currentFileName)

	if dl.file == nil || currentFilePath != filePath {
		if dl.file != nil {
			dl.file.Close()
		}
		var err error
		dl.file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		return dl.file.Close()
	}
	return nil
}
