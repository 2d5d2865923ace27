// Package storage keeps uploaded user assets on the local filesystem and
// maps them to and from public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cinevault/cinevault-api/internal/constants"
)

// Errors returned by LocalStore
var (
	ErrOutsideRoot  = errors.New("path escapes storage root")
	ErrInvalidPath  = errors.New("invalid relative path")
	ErrTooManyTries = errors.New("could not allocate a unique file name")
)

const maxCreateRetries = 100

// LocalStore writes files below a root directory.
// Stored paths are relative and always use forward slashes.
type LocalStore struct {
	root string
	now  func() time.Time
}

// NewLocalStore creates the root and the profile photo directory if needed.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, filepath.FromSlash(constants.ProfilePhotosDir)), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	log.Info().Str("root", abs).Msg("Local asset store ready")
	return &LocalStore{root: abs, now: time.Now}, nil
}

// UploadsDir returns the directory served under the public uploads mount.
func (s *LocalStore) UploadsDir() string {
	return filepath.Join(s.root, constants.UploadsDir)
}

// SavePhoto stores a profile photo for userID and returns its relative path,
// e.g. uploads/profilePhotos/<userID>_<unixMillis>.jpg. Existing files are
// never overwritten: on a name collision the timestamp is bumped. prev is the
// stored path of the photo being replaced, if any; the new timestamp is
// always later than the one in prev so the public URL changes even when the
// old file was already removed within the same millisecond.
func (s *LocalStore) SavePhoto(ctx context.Context, userID, ext, prev string, content io.Reader) (string, error) {
	if userID == "" || strings.ContainsAny(userID, `/\`) || strings.Contains(userID, "..") {
		return "", ErrInvalidPath
	}
	ext = normalizeExt(ext)

	stamp := s.now().UnixMilli()
	if last, ok := photoStamp(userID, prev); ok && stamp <= last {
		stamp = last + 1
	}
	for i := 0; i < maxCreateRetries; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		rel := path.Join(constants.ProfilePhotosDir, fmt.Sprintf("%s_%d%s", userID, stamp, ext))
		full := filepath.Join(s.root, filepath.FromSlash(rel))

		f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			stamp++
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create photo file: %w", err)
		}

		if _, err := io.Copy(f, content); err != nil {
			f.Close()
			os.Remove(full)
			return "", fmt.Errorf("failed to write photo file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(full)
			return "", fmt.Errorf("failed to close photo file: %w", err)
		}

		log.Debug().Str("path", rel).Msg("Stored photo")
		return rel, nil
	}

	return "", ErrTooManyTries
}

// Delete removes a stored file. A file that is already gone is not an error.
func (s *LocalStore) Delete(_ context.Context, rel string) error {
	full, err := s.resolve(rel)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", rel, err)
	}
	return nil
}

// resolve maps a relative path to an absolute path inside the root.
func (s *LocalStore) resolve(rel string) (string, error) {
	if rel == "" || strings.Contains(rel, "\x00") {
		return "", ErrInvalidPath
	}
	clean := path.Clean(strings.ReplaceAll(rel, `\`, "/"))
	if clean == "." {
		return "", ErrInvalidPath
	}
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrOutsideRoot
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// photoStamp returns the timestamp embedded in a stored photo name of userID.
func photoStamp(userID, rel string) (int64, bool) {
	if rel == "" {
		return 0, false
	}
	name := path.Base(strings.ReplaceAll(rel, `\`, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	digits, ok := strings.CutPrefix(name, userID+"_")
	if !ok {
		return 0, false
	}
	stamp, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || stamp < 0 {
		return 0, false
	}
	return stamp, true
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
