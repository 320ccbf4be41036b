package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// localDisk is the local-filesystem driver.
type localDisk struct {
	root string // absolute root directory
}

func newLocalDisk(opts Options) *localDisk {
	root := opts.Root
	if root == "" {
		root = "reports"
	}
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &localDisk{root: root}
}

func (d *localDisk) abs(path string) string {
	return filepath.Join(d.root, filepath.FromSlash(path))
}

func (d *localDisk) Put(path string, content []byte) error {
	full := d.abs(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("storage/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, content, 0o644); err != nil {
		return fmt.Errorf("storage/local: write %s: %w", path, err)
	}
	return nil
}

func (d *localDisk) Get(path string) ([]byte, error) {
	data, err := os.ReadFile(d.abs(path))
	if err != nil {
		return nil, fmt.Errorf("storage/local: get %s: %w", path, err)
	}
	return data, nil
}

func (d *localDisk) Exists(path string) bool {
	_, err := os.Stat(d.abs(path))
	return err == nil
}

func (d *localDisk) URL(path string) string {
	return "file://" + d.abs(path)
}

var _ Disk = (*localDisk)(nil)

// trimSlash is shared by both drivers when joining URL parts.
func trimSlash(s string) string { return strings.TrimLeft(s, "/") }
