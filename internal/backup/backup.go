// Package backup snapshots the issues directory before any operation
// that can lose local data. Snapshots are plain directory copies named
// by timestamp, so recovery is a manual copy back.
package backup

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	stampLayout = "20060102-150405"
	dirPerms    = 0o755
)

// Snapshot describes one stored backup.
type Snapshot struct {
	Name  string
	Path  string
	Files int
}

// Manager writes and lists snapshots under a single root directory.
type Manager struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a manager rooted at root. The root is created lazily on
// the first snapshot.
func New(root string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{root: root, logger: logger, now: time.Now}
}

// Root returns the backup root directory.
func (m *Manager) Root() string {
	return m.root
}

// Snapshot copies every regular file from dir into a fresh
// timestamp-named subdirectory of the root and returns its path. An
// existing snapshot is never overwritten; a second snapshot within the
// same second gets a numeric suffix. The copy is staged under a dot
// prefix and renamed into place only when complete.
func (m *Manager) Snapshot(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		files = nil
	} else if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.root, dirPerms); err != nil {
		return "", err
	}

	name := m.freeName(m.now().Format(stampLayout))
	staging := filepath.Join(m.root, ".partial-"+name)
	if err := os.Mkdir(staging, dirPerms); err != nil {
		return "", err
	}

	copied := 0
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		src := filepath.Join(dir, file.Name())
		dst := filepath.Join(staging, file.Name())
		if err := copyFile(src, dst); err != nil {
			_ = os.RemoveAll(staging)
			return "", fmt.Errorf("backing up %s: %w", file.Name(), err)
		}
		copied++
	}

	target := filepath.Join(m.root, name)
	if err := os.Rename(staging, target); err != nil {
		_ = os.RemoveAll(staging)
		return "", err
	}

	m.logger.Debug("snapshot written", "path", target, "files", copied)
	return target, nil
}

// List returns stored snapshots, newest first. Leftover staging
// directories from interrupted snapshots are not reported.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.root)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(m.root, entry.Name())
		files, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, Snapshot{Name: entry.Name(), Path: path, Files: len(files)})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name > snapshots[j].Name
	})
	return snapshots, nil
}

func (m *Manager) freeName(stamp string) string {
	name := stamp
	for i := 2; m.exists(name); i++ {
		name = fmt.Sprintf("%s-%d", stamp, i)
	}
	return name
}

func (m *Manager) exists(name string) bool {
	_, err := os.Stat(filepath.Join(m.root, name))
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
