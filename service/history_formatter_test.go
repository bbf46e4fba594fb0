package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ludo-technologies/qadash/internal/constants"
)

func TestWriteRunRecords(t *testing.T) {
	store, err := NewHistoryStore(constants.HistoryBackendSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewHistoryStore failed: %v", err)
	}
	defer store.Close()
	if err := store.RecordRun(context.Background(), sampleRunResult(t), ""); err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := store.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteRunRecords(&buf, runs, false); err != nil {
		t.Fatalf("WriteRunRecords failed: %v", err)
	}
	for _, want := range []string{"3f2c9a4e-run", "1.5s"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Table should contain %q\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := WriteRunRecords(&buf, runs, true); err != nil {
		t.Fatalf("WriteRunRecords failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"run_id": "3f2c9a4e-run"`) {
		t.Errorf("JSON should contain the run ID\n%s", buf.String())
	}

	rows, err := store.RepositoryTrend(context.Background(), "api", 10)
	if err != nil {
		t.Fatalf("RepositoryTrend failed: %v", err)
	}
	buf.Reset()
	if err := WriteSnapshotRecords(&buf, rows, false); err != nil {
		t.Fatalf("WriteSnapshotRecords failed: %v", err)
	}
	for _, want := range []string{"FAIL", "1/3", "40.0%", "improve code coverage"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("Table should contain %q\n%s", want, buf.String())
		}
	}
}

func TestWriteRecords_Empty(t *testing.T) {
	tests := []struct {
		name  string
		write func(*bytes.Buffer) error
		want  string
	}{
		{"runs table", func(b *bytes.Buffer) error { return WriteRunRecords(b, nil, false) }, "No runs recorded."},
		{"runs json", func(b *bytes.Buffer) error { return WriteRunRecords(b, nil, true) }, "[]"},
		{"trend table", func(b *bytes.Buffer) error { return WriteSnapshotRecords(b, nil, false) }, "No snapshots recorded."},
		{"trend json", func(b *bytes.Buffer) error { return WriteSnapshotRecords(b, nil, true) }, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.write(&buf); err != nil {
				t.Fatalf("write failed: %v", err)
			}
			if strings.TrimSpace(buf.String()) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}
