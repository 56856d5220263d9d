package align

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Workspace is a per-run scratch directory for FASTA subsets handed to the
// aligner.
type Workspace struct {
	Dir    string
	keep   bool
	logger *log.Logger
}

// NewWorkspace creates <base>/transabyss-merge-<runID>.
func NewWorkspace(base, runID string, keep bool, logger *log.Logger) (*Workspace, error) {
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "transabyss-merge-"+runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{Dir: dir, keep: keep, logger: logger}, nil
}

// Path returns a file name inside the workspace.
func (w *Workspace) Path(name string) string { return filepath.Join(w.Dir, name) }

// Create opens a new file inside the workspace.
func (w *Workspace) Create(name string) (*os.File, error) {
	return os.Create(w.Path(name))
}

// Close removes the workspace unless it is kept.
func (w *Workspace) Close() error {
	if w.keep {
		w.logger.Info("keeping temporary files", "dir", w.Dir)
		return nil
	}
	w.logger.Debug("removing temporary files", "dir", w.Dir)
	return os.RemoveAll(w.Dir)
}
