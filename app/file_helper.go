package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ludo-technologies/qadash/domain"
	"github.com/ludo-technologies/qadash/internal/constants"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// DiscoverRepositories lists the repositories that have a linter artifact in
// workDir, sorted by name. It is used when no repository list is configured.
func (h *FileHelper) DiscoverRepositories(workDir string) ([]string, error) {
	entries, err := os.ReadDir(workDir)
	if err != nil {
		return nil, err
	}

	var repositories []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if repo, ok := strings.CutSuffix(name, constants.LinterArtifactSuffix); ok && repo != "" {
			repositories = append(repositories, repo)
		}
	}
	sort.Strings(repositories)
	return repositories, nil
}

// FileExists checks if a file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// DirExists checks if a directory exists
func (h *FileHelper) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ReportPath returns the default report file for a format inside dir,
// named after the time of the run.
func (h *FileHelper) ReportPath(dir string, format domain.OutputFormat, at time.Time) string {
	if dir == "" {
		dir = constants.DefaultReportDir
	}
	extension := string(format)
	if format == domain.OutputFormatText {
		extension = "txt"
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", constants.ToolName, at.Format("20060102-150405"), extension))
}

// ResolveRepositories returns the configured repositories, or those
// discovered in workDir when none are configured.
func ResolveRepositories(fileHelper *FileHelper, configured []string, workDir string) ([]string, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	return fileHelper.DiscoverRepositories(workDir)
}
