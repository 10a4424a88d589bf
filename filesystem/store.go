// Package filesystem provides a file system Medium for sptzx.
// Objects are written atomically through a temp file and rename, one
// "<id>.bin" file per object. Point it at a tmpfs mount such as /dev/shm
// to keep objects off persistent disks.
package filesystem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/sptzx"
)

const (
	objectExt = ".bin"
	tmpPrefix = ".t"
)

// Store provides file system storage operations.
type Store struct {
	root *os.Root
}

// NewFileStorage creates a new Store with the given root directory.
// The root provides sandboxed file operations preventing path traversal.
func NewFileStorage(root *os.Root) *Store {
	return &Store{root: root}
}

func objectName(id string) (string, error) {
	if !sptzx.IsValidID(id) {
		return "", fmt.Errorf("invalid object id %q", id)
	}
	return id + objectExt, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// Write atomically stores data as the object id. The operation respects
// context cancellation; a cancelled write leaves no file behind.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	name, err := objectName(id)
	if err != nil {
		return err
	}

	tmpFile := tmpFileName()
	t, createErr := s.root.OpenFile(tmpFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if createErr != nil {
		return fmt.Errorf("could not open temp file: %w", createErr)
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := s.root.Remove(tmpFile); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				slog.Warn("failed to remove tmp file", "err", rmErr)
			}
		}
	}()

	if _, err := io.Copy(t, &ctxReader{ctx: ctx, r: bytes.NewReader(data)}); err != nil {
		return fmt.Errorf("could not write file contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return fmt.Errorf("could not sync written file: %w", err)
	}

	if renameErr := s.root.Rename(tmpFile, name); renameErr != nil {
		return fmt.Errorf("failed to rename file: %w", renameErr)
	}

	success = true
	return nil
}

// Read returns the bytes of object id. Returns sptzx.ErrNotFound if the
// file does not exist.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, err := objectName(id)
	if err != nil {
		return nil, sptzx.ErrNotFound
	}

	f, err := s.root.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, sptzx.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "id", id, "err", closeErr)
		}
	}()

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// Remove deletes object id. Returns sptzx.ErrNotFound if the file does not exist.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := objectName(id)
	if err != nil {
		return sptzx.ErrNotFound
	}

	if err := s.root.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sptzx.ErrNotFound
		}
		return fmt.Errorf("could not delete file: %w", err)
	}
	return nil
}

// Purge removes every object and stray temp file under the root. It is
// meant to run before the relay starts serving, when no record can
// reference the files. Other files are left alone.
func (s *Store) Purge(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dirEntries, err := fs.ReadDir(s.root.FS(), ".")
	if err != nil {
		return 0, fmt.Errorf("failed to list files: %w", err)
	}

	removed := 0
	for _, entry := range dirEntries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		name := entry.Name()
		if entry.IsDir() || !(strings.HasSuffix(name, objectExt) || strings.HasPrefix(name, tmpPrefix)) {
			continue
		}

		if err := s.root.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("purge %s: %w", name, err)
		}
		removed++
	}

	return removed, nil
}

func tmpFileName() string {
	return tmpPrefix + uuid.New().String()
}
