// Package body reads document body files named in a row.
package body

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/JonMunkholm/importdata/internal/domain"
)

var (
	// ErrNotFound means the path names no regular file.
	ErrNotFound = errors.New("no such file")

	// ErrTooLarge means the file exceeds the loader's size limit.
	ErrTooLarge = errors.New("file too large")
)

// DefaultMaxSize is used when the loader is given no limit.
const DefaultMaxSize int64 = 50 << 20

// Loader loads body files from a file system.
type Loader struct {
	fs      afero.Fs
	root    string
	maxSize int64
}

// NewLoader returns a loader reading from fs. Relative paths are resolved
// against root; maxSize <= 0 means DefaultMaxSize.
func NewLoader(fs afero.Fs, root string, maxSize int64) *Loader {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Loader{fs: fs, root: root, maxSize: maxSize}
}

// NewOsLoader returns a loader on the local file system.
func NewOsLoader(root string, maxSize int64) *Loader {
	return NewLoader(afero.NewOsFs(), root, maxSize)
}

func (l *Loader) resolve(path string) string {
	path = filepath.Clean(path)
	if l.root == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.root, path)
}

// Load reads path as a new body version of the document. The extension is
// taken from the file name, or detected from the content when the name
// has none.
func (l *Loader) Load(documentID uuid.UUID, path string) (*domain.Body, error) {
	full := l.resolve(path)

	info, err := l.fs.Stat(full)
	if err != nil || info.IsDir() {
		return nil, errors.Wrapf(ErrNotFound, "%s", path)
	}
	if info.Size() > l.maxSize {
		return nil, errors.Wrapf(ErrTooLarge, "%s is %d bytes, limit %d", path, info.Size(), l.maxSize)
	}

	content, err := afero.ReadFile(l.fs, full)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}

	mime := mimetype.Detect(content)
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(full)), ".")
	if ext == "" {
		ext = strings.TrimPrefix(mime.Extension(), ".")
	}

	return &domain.Body{
		DocumentID: documentID,
		Extension:  ext,
		MimeType:   mime.String(),
		Content:    content,
	}, nil
}
