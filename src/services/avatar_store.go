package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// diskBlobStore keeps blobs as flat files under a root directory. Keys are
// generated by the callers and never contain path separators, but the store
// still rejects anything that would escape the root.
type diskBlobStore struct {
	root string
}

func NewDiskBlobStore(root string) (BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating blob store root %s: %w", root, err)
	}
	return &diskBlobStore{root: root}, nil
}

func (d *diskBlobStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(d.root, key), nil
}

func (d *diskBlobStore) Put(key string, r io.Reader) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func (d *diskBlobStore) Get(key string) (io.ReadCloser, error) {
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (d *diskBlobStore) Delete(key string) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
