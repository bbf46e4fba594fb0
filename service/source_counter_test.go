package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/testutil"
)

func newTestCounter(reposDir, workDir string, exclude []string, gitignore bool) *SourceCounter {
	return NewSourceCounter(SourceCounterConfig{
		RepositoriesDir:  reposDir,
		WorkDir:          workDir,
		SourceSuffix:     ".py",
		ExcludePatterns:  exclude,
		RespectGitignore: gitignore,
	})
}

func TestSourceCounter_Count(t *testing.T) {
	reposDir := t.TempDir()
	testutil.WriteCheckout(t, reposDir, "worker", map[string]string{
		"main.py":          "import os\nprint(os.name)\n",
		"pkg/util.py":      "x = 1",
		"pkg/README.md":    "docs\n",
		"venv/lib/site.py": "ignored\n",
		".git/hooks/a.py":  "ignored\n",
	})

	counter := newTestCounter(reposDir, t.TempDir(), []string{"venv"}, false)
	files, lines, err := counter.Count(context.Background(), "worker")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}

	if files != 2 {
		t.Errorf("Expected 2 source files, got %d", files)
	}
	// 2 lines in main.py, 1 unterminated line in util.py
	if lines != 3 {
		t.Errorf("Expected 3 lines, got %d", lines)
	}
}

func TestSourceCounter_Gitignore(t *testing.T) {
	reposDir := t.TempDir()
	files := map[string]string{
		".gitignore":         "generated/\n*_pb2.py\n",
		"app.py":             "a\n",
		"api_pb2.py":         "generated\n",
		"generated/model.py": "generated\n",
	}
	testutil.WriteCheckout(t, reposDir, "worker", files)

	tests := []struct {
		name      string
		gitignore bool
		want      int
	}{
		{"respect gitignore", true, 1},
		{"ignore gitignore", false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := newTestCounter(reposDir, t.TempDir(), nil, tt.gitignore)
			got, _, err := counter.Count(context.Background(), "worker")
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %d files, got %d", tt.want, got)
			}
		})
	}
}

func TestSourceCounter_CountFileFallback(t *testing.T) {
	workDir := t.TempDir()
	testutil.WriteFile(t, workDir, "worker.count", "12\n3400\n")
	testutil.WriteFile(t, workDir, "api.count", "7 files\n")

	counter := newTestCounter(t.TempDir(), workDir, nil, true)

	files, lines, err := counter.Count(context.Background(), "worker")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if files != 12 || lines != 3400 {
		t.Errorf("Expected 12 files and 3400 lines, got %d and %d", files, lines)
	}

	files, lines, err = counter.Count(context.Background(), "api")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if files != 7 || lines != 0 {
		t.Errorf("Expected 7 files and no line count, got %d and %d", files, lines)
	}
}

func TestSourceCounter_Errors(t *testing.T) {
	workDir := t.TempDir()
	testutil.WriteFile(t, workDir, "broken.count", "many\n")
	testutil.WriteFile(t, workDir, "empty.count", "\n")
	counter := newTestCounter(t.TempDir(), workDir, nil, true)

	tests := []struct {
		repo string
		code string
	}{
		{"missing", domain.ErrCodeFileNotFound},
		{"broken", domain.ErrCodeParseError},
		{"empty", domain.ErrCodeParseError},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			_, _, err := counter.Count(context.Background(), tt.repo)
			if !domain.HasErrorCode(err, tt.code) {
				t.Errorf("Expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestSourceCounter_Cancelled(t *testing.T) {
	reposDir := t.TempDir()
	testutil.WriteCheckout(t, reposDir, "worker", map[string]string{"a.py": "x\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := newTestCounter(reposDir, t.TempDir(), nil, false).Count(ctx, "worker")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
