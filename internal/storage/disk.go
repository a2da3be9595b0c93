package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"backend/internal/reconcile"
)

// Disk stores uploads under a root directory and serves them below
// baseURL. Stored names are slash-separated paths relative to root.
type Disk struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Disk{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) Root() string { return d.root }

func (d *Disk) Save(_ context.Context, dir string, up *reconcile.Upload) (string, error) {
	if up == nil {
		return "", errors.New("nothing to store")
	}
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(up.Filename, "\\", "/")))
	name := path.Join(path.Clean("/" + dir)[1:], uuid.NewString()+ext)

	full, err := d.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(full), err)
	}
	if err := os.WriteFile(full, up.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}

// Delete removes name. A file that is already gone is not an error.
func (d *Disk) Delete(_ context.Context, name string) error {
	if name == "" {
		return nil
	}
	full, err := d.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}
	return nil
}

func (d *Disk) URL(name string) string {
	return d.baseURL + "/" + strings.TrimLeft(name, "/")
}

func (d *Disk) Exists(name string) bool {
	full, err := d.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(full)
	return err == nil
}

func (d *Disk) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(d.root, filepath.FromSlash(clean[1:])), nil
}

var _ reconcile.FileStore = (*Disk)(nil)
