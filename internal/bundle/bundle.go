package bundle

import (
	"context"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
	"unsafe"

	kerrors "github.com/tynkerbase/tynkerbase/internal/errors"
	"github.com/tynkerbase/tynkerbase/internal/pathfilter"
)

// lengthFieldsSize is the two u64 length fields trailing every entry.
const lengthFieldsSize = 16

// Entry is one file: a slash-separated path relative to the bundle root and
// its content.
type Entry struct {
	Path    string
	Content []byte
}

// MemSize approximates the bytes held by the entry.
func (e Entry) MemSize() int {
	return int(unsafe.Sizeof(e)) + len(e.Path) + cap(e.Content)
}

// Bundle is an ordered list of entries. Duplicate paths are allowed.
type Bundle struct {
	Entries []Entry
}

func New() *Bundle {
	return &Bundle{}
}

// Add appends an entry.
func (b *Bundle) Add(p string, content []byte) {
	b.Entries = append(b.Entries, Entry{Path: p, Content: content})
}

func (b *Bundle) Len() int {
	return len(b.Entries)
}

// MemSize approximates the bytes held by the bundle and its entries.
func (b *Bundle) MemSize() int {
	size := int(unsafe.Sizeof(*b))
	for _, e := range b.Entries {
		size += e.MemSize()
	}
	return size
}

// EncodedSize is the length of Marshal's output.
func (b *Bundle) EncodedSize() int {
	size := 0
	for _, e := range b.Entries {
		size += len(e.Path) + len(e.Content) + lengthFieldsSize
	}
	return size
}

// Marshal encodes the bundle in wire format.
func (b *Bundle) Marshal() []byte {
	buf := make([]byte, 0, b.EncodedSize())
	for _, e := range b.Entries {
		buf = append(buf, e.Path...)
		buf = append(buf, e.Content...)
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(e.Path)))
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(e.Content)))
	}
	return buf
}

func truncated(field string, expected uint64, found int) error {
	return &kerrors.FormatError{
		Field:    field,
		Expected: strconv.FormatUint(expected, 10) + " bytes",
		Found:    strconv.Itoa(found) + " bytes",
		Err:      kerrors.ErrTruncatedBuffer,
	}
}

// Unmarshal decodes a wire-format buffer. Entry contents alias data.
func Unmarshal(data []byte) (*Bundle, error) {
	var reversed []Entry
	rest := data

	for len(rest) > 0 {
		if len(rest) < lengthFieldsSize {
			return nil, truncated("length fields", lengthFieldsSize, len(rest))
		}
		contentLen := binary.BigEndian.Uint64(rest[len(rest)-8:])
		pathLen := binary.BigEndian.Uint64(rest[len(rest)-16 : len(rest)-8])
		rest = rest[:len(rest)-lengthFieldsSize]

		if contentLen > uint64(len(rest)) {
			return nil, truncated("content", contentLen, len(rest))
		}
		content := rest[len(rest)-int(contentLen):]
		rest = rest[:len(rest)-int(contentLen)]

		if pathLen > uint64(len(rest)) {
			return nil, truncated("path", pathLen, len(rest))
		}
		rawPath := rest[len(rest)-int(pathLen):]
		rest = rest[:len(rest)-int(pathLen)]

		if !utf8.Valid(rawPath) {
			return nil, &kerrors.FormatError{
				Field:    "path",
				Expected: "UTF-8 text",
				Found:    fmt.Sprintf("%q", rawPath),
				Err:      kerrors.ErrInvalidText,
			}
		}

		reversed = append(reversed, Entry{Path: string(rawPath), Content: content})
	}

	b := &Bundle{Entries: make([]Entry, len(reversed))}
	for i, e := range reversed {
		b.Entries[len(reversed)-1-i] = e
	}
	return b, nil
}

// Load reads every file under root that rules include. Paths are relative
// to root and slash-separated.
func Load(ctx context.Context, root string, rules *pathfilter.RuleSet) (*Bundle, error) {
	b := New()
	err := pathfilter.Walk(root, rules, func(rel string, _ fs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", rel, err)
		}
		b.Add(rel, content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SafeJoin resolves p below dir, rejecting absolute paths and paths that
// escape dir.
func SafeJoin(dir, p string) (string, error) {
	if p == "" || path.IsAbs(p) || filepath.IsAbs(p) || filepath.VolumeName(p) != "" || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", kerrors.ErrUnsafePath, p)
	}
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", kerrors.ErrUnsafePath, p)
	}
	return filepath.Join(dir, filepath.FromSlash(cleaned)), nil
}

// Save writes every entry below dir, creating parent directories. Later
// duplicates overwrite earlier ones. Paths are validated before anything is
// written.
func (b *Bundle) Save(ctx context.Context, dir string) error {
	targets := make([]string, len(b.Entries))
	for i, e := range b.Entries {
		target, err := SafeJoin(dir, e.Path)
		if err != nil {
			return err
		}
		targets[i] = target
	}

	for i, e := range b.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(targets[i]), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", e.Path, err)
		}
		if err := os.WriteFile(targets[i], e.Content, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.Path, err)
		}
	}
	return nil
}
