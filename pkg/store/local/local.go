// Package local implements store.Store against the local filesystem.
package local

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	fluidizeerrors "github.com/fluidize-dev/fluidize-engine/pkg/errors"
	"github.com/fluidize-dev/fluidize-engine/pkg/store"
)

func init() {
	store.Register("local", New)
}

// Store implements store.Store by reading and writing real files.
type Store struct{}

// New constructs a local Store. It accepts the registry's config map for
// interface symmetry but currently ignores it: the filesystem backend has
// no configuration of its own, every path it is given is already absolute.
func New(_ map[string]string) (store.Store, error) {
	return &Store{}, nil
}

func (s *Store) ReadJSON(ctx context.Context, path string, v interface{}) error {
	data, err := s.readFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fluidizeerrors.IOFault("decode_json", path, err)
	}
	return nil
}

func (s *Store) WriteJSON(ctx context.Context, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fluidizeerrors.IOFault("encode_json", path, err)
	}
	return s.writeFileAtomic(path, data)
}

func (s *Store) ReadYAML(ctx context.Context, path string, v interface{}) error {
	data, err := s.readFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fluidizeerrors.IOFault("decode_yaml", path, err)
	}
	return nil
}

func (s *Store) WriteYAML(ctx context.Context, path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fluidizeerrors.IOFault("encode_yaml", path, err)
	}
	return s.writeFileAtomic(path, data)
}

func (s *Store) CopyDirectory(ctx context.Context, src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fluidizeerrors.IOFault("copy_directory", src, err)
	}
	if !info.IsDir() {
		return fluidizeerrors.IOFault("copy_directory", src, fmt.Errorf("not a directory"))
	}

	err = filepath.Walk(src, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
	if err != nil {
		return fluidizeerrors.IOFault("copy_directory", src, err)
	}
	return nil
}

func (s *Store) RemoveDirectory(ctx context.Context, path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fluidizeerrors.IOFault("remove_directory", path, err)
	}
	return nil
}

func (s *Store) CreateDirectory(ctx context.Context, path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fluidizeerrors.IOFault("create_directory", path, err)
	}
	return nil
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fluidizeerrors.IOFault("exists", path, err)
}

func (s *Store) ListDirectories(ctx context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fluidizeerrors.IOFault("list_directories", path, err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

func (s *Store) readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fluidizeerrors.NotFound("file", path)
		}
		return nil, fluidizeerrors.IOFault("read", path, err)
	}
	return data, nil
}

// writeFileAtomic writes data to a temp file in the same directory then
// renames it into place, so a crash mid-write never leaves a half-written
// file at path.
func (s *Store) writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fluidizeerrors.IOFault("create_directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".fluidize-*")
	if err != nil {
		return fluidizeerrors.IOFault("write", path, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fluidizeerrors.IOFault("write", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fluidizeerrors.IOFault("write", path, closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fluidizeerrors.IOFault("write", path, err)
	}

	return nil
}
