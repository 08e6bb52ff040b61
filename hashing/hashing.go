// Package hashing computes content hashes of resolved artifact files.
//
// Regular files are hashed by content. Archives (jar, zip) are hashed entry by
// entry through a ContentHasher, and the entry hashes are combined in name
// order, so two archives with the same entries hash equally regardless of
// entry order or timestamps.
package hashing

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strings"
)

// Hash is a sha256 digest.
type Hash [sha256.Size]byte

// String returns the lowercase hex encoding.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash. Hashers return it for content
// that should not contribute to an archive hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// FileSnapshot describes a regular file at the time it was read.
type FileSnapshot struct {
	Path        string
	Size        int64
	ContentHash Hash
}

// ContentHasher hashes files and archive entries. Implementations can
// normalize content, or return the zero Hash to leave an entry out.
type ContentHasher interface {
	HashFile(snapshot FileSnapshot) Hash
	HashEntry(entry *zip.FileHeader, r io.Reader) (Hash, error)
}

// Default hashes raw content only.
type Default struct{}

// HashFile returns the snapshot's content hash.
func (Default) HashFile(snapshot FileSnapshot) Hash {
	return snapshot.ContentHash
}

// HashEntry returns the sha256 of the entry's content.
func (Default) HashEntry(_ *zip.FileHeader, r io.Reader) (Hash, error) {
	return sum(r)
}

// Ignoring wraps a hasher and drops archive entries whose name matches one of
// the patterns. Patterns use path.Match syntax against the full entry name.
type Ignoring struct {
	Hasher   ContentHasher
	Patterns []string
}

// HashFile delegates to the wrapped hasher.
func (h Ignoring) HashFile(snapshot FileSnapshot) Hash {
	return h.hasher().HashFile(snapshot)
}

// HashEntry returns the zero Hash for ignored entries.
func (h Ignoring) HashEntry(entry *zip.FileHeader, r io.Reader) (Hash, error) {
	for _, pattern := range h.Patterns {
		ok, err := path.Match(pattern, entry.Name)
		if err != nil {
			return Hash{}, fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
		if ok {
			return Hash{}, nil
		}
	}
	return h.hasher().HashEntry(entry, r)
}

func (h Ignoring) hasher() ContentHasher {
	if h.Hasher == nil {
		return Default{}
	}
	return h.Hasher
}

// SnapshotFile reads the file at p and records its size and content hash.
func SnapshotFile(p string) (FileSnapshot, error) {
	f, err := os.Open(p)
	if err != nil {
		return FileSnapshot{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileSnapshot{}, err
	}
	if info.IsDir() {
		return FileSnapshot{}, fmt.Errorf("snapshot %s: is a directory", p)
	}
	h, err := sum(f)
	if err != nil {
		return FileSnapshot{}, fmt.Errorf("snapshot %s: %w", p, err)
	}
	return FileSnapshot{Path: p, Size: info.Size(), ContentHash: h}, nil
}

type entryHash struct {
	name string
	hash Hash
}

// HashArchive hashes every file entry of the zip archive at p with hasher and
// combines the results. Directory entries are skipped.
func HashArchive(hasher ContentHasher, p string) (Hash, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return Hash{}, err
	}
	defer zr.Close()

	entries := make([]entryHash, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		h, err := hashEntry(hasher, f)
		if err != nil {
			return Hash{}, fmt.Errorf("hash %s!%s: %w", p, f.Name, err)
		}
		if h.IsZero() {
			continue
		}
		entries = append(entries, entryHash{name: f.Name, hash: h})
	}

	slices.SortFunc(entries, func(a, b entryHash) int {
		return strings.Compare(a.name, b.name)
	})

	d := sha256.New()
	var buf []byte
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(entries)))
	for _, e := range entries {
		buf = appendField(buf, []byte(e.name))
		buf = appendField(buf, e.hash[:])
	}
	d.Write(buf)

	var out Hash
	copy(out[:], d.Sum(nil))
	return out, nil
}

// HashPath hashes p as an archive when it is a zip file and as a regular file
// otherwise.
func HashPath(hasher ContentHasher, p string) (Hash, error) {
	h, err := HashArchive(hasher, p)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, zip.ErrFormat) {
		return Hash{}, err
	}
	snapshot, err := SnapshotFile(p)
	if err != nil {
		return Hash{}, err
	}
	return hasher.HashFile(snapshot), nil
}

func hashEntry(hasher ContentHasher, f *zip.File) (Hash, error) {
	rc, err := f.Open()
	if err != nil {
		return Hash{}, err
	}
	defer rc.Close()
	return hasher.HashEntry(&f.FileHeader, rc)
}

// appendField writes an 8-byte big-endian length prefix followed by data.
func appendField(buf, data []byte) []byte {
	buf = binary.BigEndian.AppendUint64(buf, uint64(len(data)))
	return append(buf, data...)
}

func sum(r io.Reader) (Hash, error) {
	d := sha256.New()
	if _, err := io.Copy(d, r); err != nil {
		return Hash{}, err
	}
	var h Hash
	copy(h[:], d.Sum(nil))
	return h, nil
}
