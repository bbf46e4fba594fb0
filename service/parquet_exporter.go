package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/parquet-go/parquet-go"
)

// ParquetRun is one stored run, as written to <prefix>.runs.parquet
type ParquetRun struct {
	RunID        string    `parquet:"run_id,snappy"`
	StartedAt    time.Time `parquet:"started_at,snappy"`
	FinishedAt   time.Time `parquet:"finished_at,snappy"`
	DurationMs   int64     `parquet:"duration_ms,snappy"`
	Repositories int32     `parquet:"repositories,snappy"`
	Passed       int32     `parquet:"passed,snappy"`
	Failed       int32     `parquet:"failed,snappy"`
	Config       *string   `parquet:"config,optional,snappy"`
}

// ParquetSnapshot is one stored repository row, as written to <prefix>.snapshots.parquet
type ParquetSnapshot struct {
	RunID              string    `parquet:"run_id,snappy"`
	Repository         string    `parquet:"repository,snappy"`
	RecordedAt         time.Time `parquet:"recorded_at,snappy"`
	Status             bool      `parquet:"status,snappy"`
	SourceFiles        int32     `parquet:"source_files,snappy"`
	LinterTotal        int32     `parquet:"linter_total,snappy"`
	LinterFailed       int32     `parquet:"linter_failed,snappy"`
	DocstyleTotal      int32     `parquet:"docstyle_total,snappy"`
	DocstyleFailed     int32     `parquet:"docstyle_failed,snappy"`
	Coverage           *float64  `parquet:"coverage,optional,snappy"`
	CCStatus           bool      `parquet:"cc_status,snappy"`
	MIStatus           bool      `parquet:"mi_status,snappy"`
	DeadCodeFailed     int32     `parquet:"dead_code_failed,snappy"`
	CommonErrorsFailed int32     `parquet:"common_errors_failed,snappy"`
	Remarks            string    `parquet:"remarks,snappy"`
}

// ExportSummary reports what an export wrote
type ExportSummary struct {
	RunsFile      string
	SnapshotsFile string
	Runs          int
	Snapshots     int
}

// ParquetExporter exports the run history to Parquet files
type ParquetExporter struct {
	store domain.HistoryStore
}

// NewParquetExporter creates an exporter reading from the store
func NewParquetExporter(store domain.HistoryStore) *ParquetExporter {
	return &ParquetExporter{store: store}
}

// Export writes <prefix>.runs.parquet and <prefix>.snapshots.parquet
func (e *ParquetExporter) Export(ctx context.Context, prefix string) (ExportSummary, error) {
	var summary ExportSummary
	if prefix == "" {
		return summary, domain.NewInvalidInputError("an output prefix is required for export", nil)
	}

	runs, err := e.store.ListRuns(ctx, 0)
	if err != nil {
		return summary, err
	}
	if len(runs) == 0 {
		return summary, domain.NewStorageError("no run history found to export", nil)
	}
	snapshots, err := e.store.AllSnapshots(ctx)
	if err != nil {
		return summary, err
	}

	summary.RunsFile = prefix + ".runs.parquet"
	summary.SnapshotsFile = prefix + ".snapshots.parquet"
	summary.Runs = len(runs)
	summary.Snapshots = len(snapshots)

	if err := writeParquet(summary.RunsFile, ConvertRunRecords(runs)); err != nil {
		return summary, err
	}
	if err := writeParquet(summary.SnapshotsFile, ConvertSnapshotRecords(snapshots)); err != nil {
		return summary, err
	}
	return summary, nil
}

// ConvertRunRecords maps stored runs onto Parquet rows
func ConvertRunRecords(records []domain.RunRecord) []ParquetRun {
	rows := make([]ParquetRun, 0, len(records))
	for _, r := range records {
		row := ParquetRun{
			RunID:        r.RunID,
			StartedAt:    r.StartedAt,
			FinishedAt:   r.FinishedAt,
			DurationMs:   r.FinishedAt.Sub(r.StartedAt).Milliseconds(),
			Repositories: int32(r.Repositories),
			Passed:       int32(r.Passed),
			Failed:       int32(r.Failed),
		}
		if r.Config != "" {
			config := r.Config
			row.Config = &config
		}
		rows = append(rows, row)
	}
	return rows
}

// ConvertSnapshotRecords maps stored repository rows onto Parquet rows
func ConvertSnapshotRecords(records []domain.SnapshotRecord) []ParquetSnapshot {
	rows := make([]ParquetSnapshot, 0, len(records))
	for _, r := range records {
		rows = append(rows, ParquetSnapshot{
			RunID:              r.RunID,
			Repository:         r.Repository,
			RecordedAt:         r.RecordedAt,
			Status:             r.Status,
			SourceFiles:        int32(r.SourceFiles),
			LinterTotal:        int32(r.LinterTotal),
			LinterFailed:       int32(r.LinterFailed),
			DocstyleTotal:      int32(r.DocstyleTotal),
			DocstyleFailed:     int32(r.DocstyleFailed),
			Coverage:           r.Coverage,
			CCStatus:           r.CCStatus,
			MIStatus:           r.MIStatus,
			DeadCodeFailed:     int32(r.DeadCodeFailed),
			CommonErrorsFailed: int32(r.CommonErrorsFailed),
			Remarks:            FormatRemarks(r.Remarks),
		})
	}
	return rows
}

func writeParquet[T any](path string, rows []T) error {
	file, err := os.Create(path)
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create %s", path), err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return domain.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
	}
	if err := writer.Close(); err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to finish %s", path), err)
	}
	return nil
}
