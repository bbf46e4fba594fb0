package service

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/analyzer"
	"github.com/ludo-technologies/qadash/internal/constants"
	ignore "github.com/sabhiram/go-gitignore"
)

// SourceCounterConfig configures a SourceCounter
type SourceCounterConfig struct {
	RepositoriesDir  string
	WorkDir          string
	SourceSuffix     string
	ExcludePatterns  []string
	RespectGitignore bool
}

// SourceCounter counts the source files and lines of repository checkouts
type SourceCounter struct {
	repositoriesDir  string
	workDir          string
	suffix           string
	exclude          *ignore.GitIgnore
	respectGitignore bool
}

// NewSourceCounter creates a counter
func NewSourceCounter(cfg SourceCounterConfig) *SourceCounter {
	suffix := cfg.SourceSuffix
	if suffix == "" {
		suffix = analyzer.DefaultSourceSuffix
	}
	return &SourceCounter{
		repositoriesDir:  cfg.RepositoriesDir,
		workDir:          cfg.WorkDir,
		suffix:           suffix,
		exclude:          ignore.CompileIgnoreLines(cfg.ExcludePatterns...),
		respectGitignore: cfg.RespectGitignore,
	}
}

// Count returns the number of source files of a repository and their total
// line count. Without a checkout, the <repo>.count file of the work
// directory is used.
func (c *SourceCounter) Count(ctx context.Context, repository string) (files, lines int, err error) {
	root := filepath.Join(c.repositoriesDir, repository)
	info, statErr := os.Stat(root)
	if statErr == nil && info.IsDir() {
		return c.walk(ctx, root)
	}

	countPath := filepath.Join(c.workDir, repository+constants.CountArtifactSuffix)
	files, lines, err = readCountFile(countPath)
	if err == nil {
		return files, lines, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return 0, 0, domain.NewFileNotFoundError(root, statErr)
	}
	return 0, 0, err
}

func (c *SourceCounter) walk(ctx context.Context, root string) (files, lines int, err error) {
	var gitignore *ignore.GitIgnore
	if c.respectGitignore {
		gi, giErr := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
		if giErr == nil {
			gitignore = gi
		}
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if d.Name() == ".git" || c.skipped(gitignore, rel+"/") || c.skipped(gitignore, rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), c.suffix) || c.skipped(gitignore, rel) {
			return nil
		}

		n, countErr := countLines(path)
		if countErr != nil {
			return countErr
		}
		files++
		lines += n
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, 0, ctxErr
		}
		return 0, 0, domain.NewAnalysisError(fmt.Sprintf("cannot count source files in %s", root), err)
	}
	return files, lines, nil
}

func (c *SourceCounter) skipped(gitignore *ignore.GitIgnore, rel string) bool {
	if c.exclude.MatchesPath(rel) {
		return true
	}
	return gitignore != nil && gitignore.MatchesPath(rel)
}

// countLines counts newline-terminated lines plus a trailing partial line
func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 32*1024)
	count := 0
	var last byte
	for {
		n, err := f.Read(buf)
		if n > 0 {
			count += bytes.Count(buf[:n], []byte{'\n'})
			last = buf[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}
	if last != 0 && last != '\n' {
		count++
	}
	return count, nil
}

// readCountFile parses a <repo>.count file: the file count on the first
// line and an optional total line count on the second.
func readCountFile(path string) (files, lines int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = f.Close() }()

	var values []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() && len(values) < 2 {
		field := strings.TrimSpace(scanner.Text())
		if field == "" {
			continue
		}
		// wc -l prints "<n> <file>"
		field = strings.Fields(field)[0]
		v, convErr := strconv.Atoi(field)
		if convErr != nil || v < 0 {
			return 0, 0, domain.NewParseError(path, fmt.Errorf("invalid count %q", field))
		}
		values = append(values, v)
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, domain.NewParseError(path, err)
	}

	switch len(values) {
	case 0:
		return 0, 0, domain.NewParseError(path, errors.New("empty count file"))
	case 1:
		return values[0], 0, nil
	default:
		return values[0], values[1], nil
	}
}
